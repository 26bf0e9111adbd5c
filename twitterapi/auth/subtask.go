package auth

// Wire identifiers of the onboarding subtasks the engine understands.
const (
	subtaskIDJSInstrumentation        = "LoginJsInstrumentationSubtask"
	subtaskIDEnterUserIdentifier      = "LoginEnterUserIdentifierSSO"
	subtaskIDEnterAlternateIdentifier = "LoginEnterAlternateIdentifierSubtask"
	subtaskIDEnterPassword            = "LoginEnterPassword"
	subtaskIDAccountDuplicationCheck  = "AccountDuplicationCheck"
	subtaskIDTwoFactorChallenge       = "LoginTwoFactorAuthChallenge"
	subtaskIDAcid                     = "LoginAcid"
	subtaskIDSuccess                  = "LoginSuccessSubtask"
	subtaskIDDenyLogin                = "DenyLoginSubtask"
)

// Subtask is the closed set of login flow states. The zero value is
// the explicit unknown case so an unhandled wire id can never be
// mistaken for a real state.
type Subtask int

const (
	SubtaskUnknown Subtask = iota
	SubtaskJSInstrumentation
	SubtaskEnterUserIdentifier
	SubtaskEnterAlternateIdentifier
	SubtaskEnterPassword
	SubtaskAccountDuplicationCheck
	SubtaskTwoFactorChallenge
	SubtaskAcid
	SubtaskSuccess
	SubtaskDenyLogin
)

func parseSubtask(wireID string) Subtask {
	switch wireID {
	case subtaskIDJSInstrumentation:
		return SubtaskJSInstrumentation
	case subtaskIDEnterUserIdentifier:
		return SubtaskEnterUserIdentifier
	case subtaskIDEnterAlternateIdentifier:
		return SubtaskEnterAlternateIdentifier
	case subtaskIDEnterPassword:
		return SubtaskEnterPassword
	case subtaskIDAccountDuplicationCheck:
		return SubtaskAccountDuplicationCheck
	case subtaskIDTwoFactorChallenge:
		return SubtaskTwoFactorChallenge
	case subtaskIDAcid:
		return SubtaskAcid
	case subtaskIDSuccess:
		return SubtaskSuccess
	case subtaskIDDenyLogin:
		return SubtaskDenyLogin
	default:
		return SubtaskUnknown
	}
}

// flowTaskRequest is the envelope of every onboarding step after the
// first: the continuation token plus one subtask input.
type flowTaskRequest struct {
	FlowToken     string        `json:"flow_token"`
	SubtaskInputs []interface{} `json:"subtask_inputs"`
}

type jsInstrumentationInput struct {
	SubtaskID         string `json:"subtask_id"`
	JsInstrumentation struct {
		Response string `json:"response"`
		Link     string `json:"link"`
	} `json:"js_instrumentation"`
}

func newJSInstrumentationInput() *jsInstrumentationInput {
	in := &jsInstrumentationInput{SubtaskID: subtaskIDJSInstrumentation}
	// No JS runs here; the platform accepts an empty instrumentation
	// response from non-browser clients.
	in.JsInstrumentation.Response = "{}"
	in.JsInstrumentation.Link = "next_link"
	return in
}

type settingResponse struct {
	Key          string `json:"key"`
	ResponseData struct {
		TextData struct {
			Result string `json:"result"`
		} `json:"text_data"`
	} `json:"response_data"`
}

type userIdentifierInput struct {
	SubtaskID    string `json:"subtask_id"`
	SettingsList struct {
		SettingResponses []settingResponse `json:"setting_responses"`
		Link             string            `json:"link"`
	} `json:"settings_list"`
}

func newUserIdentifierInput(username string) *userIdentifierInput {
	var sr settingResponse
	sr.Key = "user_identifier"
	sr.ResponseData.TextData.Result = username
	in := &userIdentifierInput{SubtaskID: subtaskIDEnterUserIdentifier}
	in.SettingsList.SettingResponses = []settingResponse{sr}
	in.SettingsList.Link = "next_link"
	return in
}

type enterTextInput struct {
	SubtaskID string `json:"subtask_id"`
	EnterText struct {
		Text string `json:"text"`
		Link string `json:"link"`
	} `json:"enter_text"`
}

func newEnterTextInput(subtaskID, text string) *enterTextInput {
	in := &enterTextInput{SubtaskID: subtaskID}
	in.EnterText.Text = text
	in.EnterText.Link = "next_link"
	return in
}

type enterPasswordInput struct {
	SubtaskID     string `json:"subtask_id"`
	EnterPassword struct {
		Password string `json:"password"`
		Link     string `json:"link"`
	} `json:"enter_password"`
}

func newEnterPasswordInput(password string) *enterPasswordInput {
	in := &enterPasswordInput{SubtaskID: subtaskIDEnterPassword}
	in.EnterPassword.Password = password
	in.EnterPassword.Link = "next_link"
	return in
}

type duplicationCheckInput struct {
	SubtaskID            string `json:"subtask_id"`
	CheckLoggedInAccount struct {
		Link string `json:"link"`
	} `json:"check_logged_in_account"`
}

func newDuplicationCheckInput() *duplicationCheckInput {
	in := &duplicationCheckInput{SubtaskID: subtaskIDAccountDuplicationCheck}
	in.CheckLoggedInAccount.Link = "AccountDuplicationCheck_false"
	return in
}

// confirmationInput is the fixed empty payload for subtasks that need
// no caller data, e.g. the final success acknowledgement.
type confirmationInput struct {
	SubtaskID string `json:"subtask_id"`
}
