package model

// JobSource is the channel through which a job was found.
type JobSource string

// Enumerated job sources, in canonical order. Statistics iterate this order,
// so best/worst source tie-breaking is deterministic.
const (
	SourceLinkedIn    JobSource = "linkedin"
	SourceIndeed      JobSource = "indeed"
	SourceReferral    JobSource = "referral"
	SourceCompanySite JobSource = "company_site"
	SourceRecruiter   JobSource = "recruiter"
	SourceOther       JobSource = "other"
)

// AllJobSources lists every source in canonical order.
var AllJobSources = []JobSource{
	SourceLinkedIn,
	SourceIndeed,
	SourceReferral,
	SourceCompanySite,
	SourceRecruiter,
	SourceOther,
}

// Valid reports whether s is a member of the enumerated source set.
func (s JobSource) Valid() bool {
	for _, v := range AllJobSources {
		if v == s {
			return true
		}
	}
	return false
}

// ColorKey returns the stable styling key clients map to their theme.
func (s JobSource) ColorKey() string {
	switch s {
	case SourceLinkedIn:
		return "sky"
	case SourceIndeed:
		return "indigo"
	case SourceReferral:
		return "green"
	case SourceCompanySite:
		return "purple"
	case SourceRecruiter:
		return "amber"
	}
	return "gray"
}

// Label returns the display label for a source.
func (s JobSource) Label() string {
	switch s {
	case SourceLinkedIn:
		return "LinkedIn"
	case SourceIndeed:
		return "Indeed"
	case SourceReferral:
		return "Referral"
	case SourceCompanySite:
		return "Company Site"
	case SourceRecruiter:
		return "Recruiter"
	case SourceOther:
		return "Other"
	}
	return string(s)
}

// NoteCategory classifies a note attached to a job.
type NoteCategory string

// Enumerated note categories.
const (
	CategoryGeneral  NoteCategory = "general"
	CategoryCall     NoteCategory = "call"
	CategoryEmail    NoteCategory = "email"
	CategoryFeedback NoteCategory = "feedback"
	CategoryReminder NoteCategory = "reminder"
)

// AllNoteCategories lists every note category.
var AllNoteCategories = []NoteCategory{
	CategoryGeneral,
	CategoryCall,
	CategoryEmail,
	CategoryFeedback,
	CategoryReminder,
}

// Valid reports whether c is a member of the enumerated category set.
func (c NoteCategory) Valid() bool {
	for _, v := range AllNoteCategories {
		if v == c {
			return true
		}
	}
	return false
}

// DocumentType classifies an uploaded document.
type DocumentType string

// Enumerated document types.
const (
	DocResume      DocumentType = "resume"
	DocCoverLetter DocumentType = "cover_letter"
	DocOfferLetter DocumentType = "offer_letter"
	DocAssessment  DocumentType = "assessment"
	DocFeedback    DocumentType = "feedback"
	DocOther       DocumentType = "other"
)

// AllDocumentTypes lists every document type.
var AllDocumentTypes = []DocumentType{
	DocResume,
	DocCoverLetter,
	DocOfferLetter,
	DocAssessment,
	DocFeedback,
	DocOther,
}

// Valid reports whether d is a member of the enumerated document type set.
func (d DocumentType) Valid() bool {
	for _, v := range AllDocumentTypes {
		if v == d {
			return true
		}
	}
	return false
}
