package domain

// Role represents user role in the system
type Role string

const (
	RoleDoctor  Role = "DOCTOR"
	RolePatient Role = "PATIENT"
)

// ParseRole normalizes a role string to the closed enum.
// Anything outside {DOCTOR, PATIENT} is rejected.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleDoctor:
		return RoleDoctor, nil
	case RolePatient:
		return RolePatient, nil
	default:
		return "", ErrInvalidRole
	}
}

// CaseStatus represents the lifecycle state of a medical case.
// The only legal transition is pending -> completed.
type CaseStatus string

const (
	CaseStatusPending   CaseStatus = "pending"
	CaseStatusCompleted CaseStatus = "completed"
)

// Imaging modalities offered on case creation
const (
	ModalityCT         = "CT"
	ModalityMRI        = "MRI"
	ModalityXRay       = "X-Ray"
	ModalityUltrasound = "Ultrasound"
	ModalityOther      = "Other"
)
