package domain

import "time"

// ProjectLevel orders the academy library from beginner to advanced.
type ProjectLevel string

const (
	LevelIniciado ProjectLevel = "iniciado"
	LevelAprendiz ProjectLevel = "aprendiz"
	LevelMaestro  ProjectLevel = "maestro"
)

// Levels in display order.
var Levels = []ProjectLevel{LevelIniciado, LevelAprendiz, LevelMaestro}

func ValidLevel(l ProjectLevel) bool {
	for _, level := range Levels {
		if l == level {
			return true
		}
	}
	return false
}

// Project is one entry of the academy project library.
type Project struct {
	ID       int64        `json:"id"`
	Title    string       `json:"title"`
	Summary  string       `json:"summary"`
	Level    ProjectLevel `json:"level"`
	Topics   []string     `json:"topics"`
	ImageURL string       `json:"image_url"`
}

// RepairStage is one step of the fixed repair timeline.
type RepairStage string

// RepairStages in order. A ticket advances one stage at a time and never
// moves backwards.
var RepairStages = []RepairStage{
	"recibido",
	"diagnóstico",
	"reparando",
	"listo",
	"entregado",
}

// RepairRequest is a device handed in for repair, tracked by ticket code.
type RepairRequest struct {
	ID          int64     `json:"id"`
	TicketCode  string    `json:"ticket_code"`
	DeviceType  string    `json:"device_type"`
	DeviceBrand string    `json:"device_brand"`
	DeviceModel string    `json:"device_model"`
	Fault       string    `json:"fault"`
	Condition   string    `json:"condition"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Stage       int       `json:"stage"` // index into RepairStages
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StageName returns the human name of the current stage.
func (r *RepairRequest) StageName() RepairStage {
	if r.Stage < 0 || r.Stage >= len(RepairStages) {
		return ""
	}
	return RepairStages[r.Stage]
}

// Delivered reports whether the ticket reached the final stage.
func (r *RepairRequest) Delivered() bool {
	return r.Stage == len(RepairStages)-1
}

type CommissionStatus string

const (
	CommissionNew       CommissionStatus = "nuevo"
	CommissionReviewed  CommissionStatus = "revisado"
	CommissionContacted CommissionStatus = "contactado"
)

func ValidCommissionStatus(s CommissionStatus) bool {
	return s == CommissionNew || s == CommissionReviewed || s == CommissionContacted
}

// Commission is a custom-work request ("encargo") from the intake form.
type Commission struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Phone     string           `json:"phone"`
	Email     string           `json:"email"`
	WorkType  string           `json:"work_type"`
	Budget    string           `json:"budget"`
	Details   string           `json:"details"`
	Status    CommissionStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}
