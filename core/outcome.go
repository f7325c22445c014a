package core

import "encoding/json"

// Outcome is the result of one orchestration loop run. Exactly one of the two
// payload fields is populated:
//
//   - WaitForHuman false: Response carries the terminal answer to show the
//     user (including the exhausted-iterations fallback).
//   - WaitForHuman true: History carries the full transcript so the caller
//     can persist it and resume the loop later with new user input.
type Outcome struct {
	WaitForHuman bool
	History      Transcript
	Response     string
}

// TerminalOutcome builds a final-answer outcome.
func TerminalOutcome(response string) Outcome {
	return Outcome{Response: response}
}

// AwaitHumanOutcome builds an awaiting-human outcome carrying the transcript.
func AwaitHumanOutcome(history Transcript) Outcome {
	return Outcome{WaitForHuman: true, History: history.Clone()}
}

// outcomeWire is the JSON shape exchanged with clients.
type outcomeWire struct {
	WaitForHuman        bool     `json:"wait_for_human"`
	ConversationHistory []string `json:"conversation_history,omitempty"`
	ModelResponse       string   `json:"model_response,omitempty"`
}

// MarshalJSON encodes the outcome as
// {wait_for_human, conversation_history?, model_response?}.
func (o Outcome) MarshalJSON() ([]byte, error) {
	w := outcomeWire{WaitForHuman: o.WaitForHuman}
	if o.WaitForHuman {
		w.ConversationHistory = o.History.Strings()
	} else {
		w.ModelResponse = o.Response
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire shape produced by MarshalJSON.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var w outcomeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	o.WaitForHuman = w.WaitForHuman
	o.Response = w.ModelResponse
	o.History = nil
	if len(w.ConversationHistory) > 0 {
		o.History = ParseTranscript(w.ConversationHistory)
	}
	return nil
}
