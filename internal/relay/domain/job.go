package domain

// Job is one conversion request as the client submitted it.
type Job struct {
	ID                 string
	AcceptanceCriteria string
	AIAgent            string
	OutputFormat       string
}

// EngineRequest is the body forwarded to the workflow engine webhook.
type EngineRequest struct {
	AcceptanceCriteria string `json:"acceptanceCriteria"`
	AIAgent            string `json:"aiAgent"`
	OutputFormat       string `json:"outputFormat"`
	CallbackURL        string `json:"callbackUrl"`
	ClientToken        string `json:"clientToken"`
}
