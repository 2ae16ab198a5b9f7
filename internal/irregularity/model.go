package irregularity

import "time"

// PhotoCount é o número exato de evidências fotográficas por registro.
const PhotoCount = 4

// Type é o tipo de irregularidade enviado pelo aplicativo.
type Type string

const (
	TypeNotPark      Type = "notPark"
	TypeExceededTime Type = "exceededTime"
)

// displayLabels mapeia o tipo para o rótulo exibido/armazenado.
var displayLabels = map[Type]string{
	TypeNotPark:      "vaga-proibida",
	TypeExceededTime: "tempo-vencido",
}

// DisplayLabel devolve o rótulo do tipo. Tipo desconhecido (ou ausente)
// degrada para vazio em vez de falhar a chamada: política explícita herdada
// do sistema original, pendente de confirmação de produto.
func DisplayLabel(t Type) string {
	return displayLabels[t]
}

// Report é o registro imutável de uma irregularidade. Criado uma única vez
// por chamada bem-sucedida; nunca alterado ou removido por esta API.
type Report struct {
	ID       string `gorm:"primaryKey;size:36"`
	Plate    string `gorm:"index;size:8;not null"`
	FiscalID string `gorm:"index;size:36;not null"`
	Type     string `gorm:"size:32"` // rótulo já mapeado; vazio quando não informado

	// Evidências na ordem enviada pelo aplicativo (referências opacas).
	PhotoOne   string `gorm:"size:512;not null"`
	PhotoTwo   string `gorm:"size:512;not null"`
	PhotoThree string `gorm:"size:512;not null"`
	PhotoFour  string `gorm:"size:512;not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName mantém o nome de coleção herdado do sistema original.
func (Report) TableName() string {
	return "irregularidades"
}

// Photos devolve as evidências na ordem original.
func (r *Report) Photos() []string {
	if r == nil {
		return nil
	}
	return []string{r.PhotoOne, r.PhotoTwo, r.PhotoThree, r.PhotoFour}
}

func (r *Report) setPhotos(photos []string) {
	r.PhotoOne = photos[0]
	r.PhotoTwo = photos[1]
	r.PhotoThree = photos[2]
	r.PhotoFour = photos[3]
}
