package models

import "time"

// Interview types.
const (
	InterviewPhone  = "phone"
	InterviewVideo  = "video"
	InterviewCoding = "coding"
	InterviewMock   = "mock"
)

// Question domains.
const (
	DomainGeneral          = "general"
	DomainFrontend         = "frontend"
	DomainBackend          = "backend"
	DomainSystemDesign     = "system_design"
	DomainDSA              = "dsa"
	DomainTechnicalSupport = "technical_support"
)

func ValidInterviewType(v string) bool {
	switch v {
	case InterviewPhone, InterviewVideo, InterviewCoding, InterviewMock:
		return true
	}
	return false
}

func ValidDomain(v string) bool {
	switch v {
	case DomainGeneral, DomainFrontend, DomainBackend, DomainSystemDesign, DomainDSA, DomainTechnicalSupport:
		return true
	}
	return false
}

// Session groups a user's interview-practice activity. Deleting a session
// cascades to its QA pairs.
type Session struct {
	ID            string `bson:"id" json:"id"` // uuid v4
	Name          string `bson:"name" json:"name"`
	InterviewType string `bson:"interview_type" json:"interview_type"`
	Domain        string `bson:"domain" json:"domain"`

	JobDescription string `bson:"job_description,omitempty" json:"job_description,omitempty"`
	Resume         string `bson:"resume,omitempty" json:"resume,omitempty"`
	CompanyName    string `bson:"company_name,omitempty" json:"company_name,omitempty"`
	RoleTitle      string `bson:"role_title,omitempty" json:"role_title,omitempty"`

	// Plan-defined cap on interview length; 0 means unlimited. The client
	// session timer evaluates against this.
	DurationLimitMinutes int `bson:"duration_limit_minutes,omitempty" json:"duration_limit_minutes,omitempty"`

	IsActive  bool      `bson:"is_active" json:"is_active"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// SessionUpdate carries the mutable subset of Session; nil fields are left
// untouched.
type SessionUpdate struct {
	JobDescription       *string `json:"job_description,omitempty"`
	Resume               *string `json:"resume,omitempty"`
	CompanyName          *string `json:"company_name,omitempty"`
	RoleTitle            *string `json:"role_title,omitempty"`
	DurationLimitMinutes *int    `json:"duration_limit_minutes,omitempty"`
}
