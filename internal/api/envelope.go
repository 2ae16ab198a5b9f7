package api

// Envelope é o formato uniforme de resposta das operações públicas. Desfechos
// de negócio (inclusive os negativos) voltam dentro dele com HTTP 200; só
// falhas de protocolo e de infraestrutura viram fault HTTP.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Payload interface{} `json:"payload"`
}

const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

func Success(message string, payload interface{}) Envelope {
	return Envelope{Status: StatusSuccess, Message: message, Payload: payload}
}

func Error(message string, payload interface{}) Envelope {
	return Envelope{Status: StatusError, Message: message, Payload: payload}
}
