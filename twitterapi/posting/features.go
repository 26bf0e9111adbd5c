package posting

// graphqlFeatures is the fixed feature-flag set the CreateTweet
// GraphQL endpoint expects on every call. The platform rejects
// requests that omit flags it knows about; the values themselves are
// not user-configurable.
const graphqlFeatures = `{
	"interactive_text_enabled": true,
	"longform_notetweets_inline_media_enabled": false,
	"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": false,
	"vibe_api_enabled": false,
	"rweb_lists_timeline_redesign_enabled": true,
	"responsive_web_graphql_exclude_directive_enabled": true,
	"verified_phone_label_enabled": false,
	"creator_subscriptions_tweet_preview_api_enabled": true,
	"responsive_web_graphql_timeline_navigation_enabled": true,
	"tweetypie_unmention_optimization_enabled": true,
	"responsive_web_edit_tweet_api_enabled": true,
	"graphql_is_translatable_rweb_tweet_is_translatable_enabled": true,
	"view_counts_everywhere_api_enabled": true,
	"longform_notetweets_consumption_enabled": true,
	"tweet_awards_web_tipping_enabled": false,
	"freedom_of_speech_not_reach_fetch_enabled": true,
	"standardized_nudges_misinfo": true,
	"responsive_web_enhance_cards_enabled": false
}`
