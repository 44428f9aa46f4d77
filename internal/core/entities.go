package core

import (
	"math"
	"strings"
	"time"
)

// Record is one stored row of an entity.
//
// Values and Targets list fields in the order of the entity's Columns;
// Targets additionally starts with the id so a full row can be scanned.
type Record interface {
	Customer() string
	SetCustomer(name string)
	RecordID() int64
	SetRecordID(id int64)
	Values() []any
	Targets() []any
}

// Entity describes how one record type is stored.
type Entity struct {
	Key     string   // API and result key: "requisitions"
	Label   string   // singular display name: "Requisition"
	Table   string   // storage table
	Columns []string // stored columns in Values order, excluding id
	New     func() Record

	// Prepare fills derived and defaulted fields before a CRUD write.
	Prepare func(rec Record, now time.Time)
}

// customerColumn is the column every entity is scoped by.
const customerColumn = "customer_name"

// ProgramTask is one row of the program delivery tracker.
type ProgramTask struct {
	ID           int64      `json:"id"`
	Workstream   string     `json:"workstream" validate:"max=255"`
	Deliverable  string     `json:"deliverable" validate:"max=500"`
	Status       string     `json:"status" validate:"max=100"`
	Duration     int        `json:"duration" validate:"gte=0"`
	StartDate    *time.Time `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
	Progress     float64    `json:"progress" validate:"gte=0,lte=100"`
	Phase        string     `json:"phase" validate:"max=255"`
	Milestone    string     `json:"milestone" validate:"max=255"`
	Owner        string     `json:"owner" validate:"max=255"`
	CustomerName *string    `json:"customerName" validate:"omitempty,max=255"`
}

func (t *ProgramTask) Customer() string        { return deref(t.CustomerName) }
func (t *ProgramTask) SetCustomer(name string) { t.CustomerName = optional(name) }
func (t *ProgramTask) RecordID() int64         { return t.ID }
func (t *ProgramTask) SetRecordID(id int64)    { t.ID = id }

func (t *ProgramTask) Values() []any {
	return []any{t.Workstream, t.Deliverable, t.Status, t.Duration, t.StartDate, t.EndDate,
		t.Progress, t.Phase, t.Milestone, t.Owner, t.CustomerName}
}

func (t *ProgramTask) Targets() []any {
	return []any{&t.ID, &t.Workstream, &t.Deliverable, &t.Status, &t.Duration, &t.StartDate, &t.EndDate,
		&t.Progress, &t.Phase, &t.Milestone, &t.Owner, &t.CustomerName}
}

// InfraTask is one row of the infrastructure setup tracker. StartDate is
// never null.
type InfraTask struct {
	ID              int64      `json:"id"`
	InfraPhase      string     `json:"infraPhase" validate:"max=255"`
	TaskName        string     `json:"taskName" validate:"max=500"`
	Status          string     `json:"status" validate:"max=100"`
	PercentComplete float64    `json:"percentComplete" validate:"gte=0,lte=100"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         *time.Time `json:"endDate"`
	Owner           string     `json:"owner" validate:"max=255"`
	CustomerName    *string    `json:"customerName" validate:"omitempty,max=255"`
}

func (t *InfraTask) Customer() string        { return deref(t.CustomerName) }
func (t *InfraTask) SetCustomer(name string) { t.CustomerName = optional(name) }
func (t *InfraTask) RecordID() int64         { return t.ID }
func (t *InfraTask) SetRecordID(id int64)    { t.ID = id }

func (t *InfraTask) Values() []any {
	return []any{t.InfraPhase, t.TaskName, t.Status, t.PercentComplete, t.StartDate, t.EndDate,
		t.Owner, t.CustomerName}
}

func (t *InfraTask) Targets() []any {
	return []any{&t.ID, &t.InfraPhase, &t.TaskName, &t.Status, &t.PercentComplete, &t.StartDate, &t.EndDate,
		&t.Owner, &t.CustomerName}
}

// Requisition is an open position in the TA pipeline.
type Requisition struct {
	ID                     int64      `json:"id"`
	RequisitionID          string     `json:"requisitionId" validate:"max=100"`
	JobTitle               string     `json:"jobTitle" validate:"max=255"`
	HiringManager          *string    `json:"hiringManager" validate:"omitempty,max=255"`
	Technology             *string    `json:"technology" validate:"omitempty,max=255"`
	Recruiter              *string    `json:"recruiter" validate:"omitempty,max=255"`
	ApprovedPositions      int        `json:"approvedPositions" validate:"gte=0"`
	Priority               *string    `json:"priority" validate:"omitempty,max=100"`
	RequisitionStatus      string     `json:"requisitionStatus" validate:"max=100"`
	RequisitionCreatedDate *time.Time `json:"requisitionCreatedDate"`
	TargetClosureDate      *time.Time `json:"targetClosureDate"`
	Location               *string    `json:"location" validate:"omitempty,max=255"`
	BusinessUnit           *string    `json:"businessUnit" validate:"omitempty,max=255"`
	CustomerName           *string    `json:"customerName" validate:"omitempty,max=255"`
}

func (r *Requisition) Customer() string        { return deref(r.CustomerName) }
func (r *Requisition) SetCustomer(name string) { r.CustomerName = optional(name) }
func (r *Requisition) RecordID() int64         { return r.ID }
func (r *Requisition) SetRecordID(id int64)    { r.ID = id }

func (r *Requisition) Values() []any {
	return []any{r.RequisitionID, r.JobTitle, r.HiringManager, r.Technology, r.Recruiter,
		r.ApprovedPositions, r.Priority, r.RequisitionStatus, r.RequisitionCreatedDate,
		r.TargetClosureDate, r.Location, r.BusinessUnit, r.CustomerName}
}

func (r *Requisition) Targets() []any {
	return []any{&r.ID, &r.RequisitionID, &r.JobTitle, &r.HiringManager, &r.Technology, &r.Recruiter,
		&r.ApprovedPositions, &r.Priority, &r.RequisitionStatus, &r.RequisitionCreatedDate,
		&r.TargetClosureDate, &r.Location, &r.BusinessUnit, &r.CustomerName}
}

// Candidate is a profile submitted against a requisition.
type Candidate struct {
	ID                  int64      `json:"id"`
	CandidateID         string     `json:"candidateId" validate:"max=255"`
	RequisitionID       string     `json:"requisitionId" validate:"max=100"`
	CandidateName       string     `json:"candidateName" validate:"required,max=255"`
	Recruiter           *string    `json:"recruiter" validate:"omitempty,max=255"`
	Source              *string    `json:"source" validate:"omitempty,max=255"`
	ProfileReceivedDate *time.Time `json:"profileReceivedDate"`
	ProfileStatus       *string    `json:"profileStatus" validate:"omitempty,max=100"`
	CurrentStage        *string    `json:"currentStage" validate:"omitempty,max=100"`
	StageEntryDate      *time.Time `json:"stageEntryDate"`
	CandidateStatus     *string    `json:"candidateStatus" validate:"omitempty,max=100"`
	CustomerName        *string    `json:"customerName" validate:"omitempty,max=255"`
}

func (c *Candidate) Customer() string        { return deref(c.CustomerName) }
func (c *Candidate) SetCustomer(name string) { c.CustomerName = optional(name) }
func (c *Candidate) RecordID() int64         { return c.ID }
func (c *Candidate) SetRecordID(id int64)    { c.ID = id }

func (c *Candidate) Values() []any {
	return []any{c.CandidateID, c.RequisitionID, c.CandidateName, c.Recruiter, c.Source,
		c.ProfileReceivedDate, c.ProfileStatus, c.CurrentStage, c.StageEntryDate,
		c.CandidateStatus, c.CustomerName}
}

func (c *Candidate) Targets() []any {
	return []any{&c.ID, &c.CandidateID, &c.RequisitionID, &c.CandidateName, &c.Recruiter, &c.Source,
		&c.ProfileReceivedDate, &c.ProfileStatus, &c.CurrentStage, &c.StageEntryDate,
		&c.CandidateStatus, &c.CustomerName}
}

// Interview is one interview round of a candidate.
type Interview struct {
	ID              int64      `json:"id"`
	InterviewID     *string    `json:"interviewId" validate:"omitempty,max=100"`
	CandidateID     string     `json:"candidateId" validate:"max=255"`
	RequisitionID   string     `json:"requisitionId" validate:"max=100"`
	InterviewRound  *string    `json:"interviewRound" validate:"omitempty,max=100"`
	InterviewDate   *time.Time `json:"interviewDate"`
	FeedbackDate    *time.Time `json:"feedbackDate"`
	InterviewResult *string    `json:"interviewResult" validate:"omitempty,max=100"`
	Interviewer     *string    `json:"interviewer" validate:"omitempty,max=255"`
	CustomerName    *string    `json:"customerName" validate:"omitempty,max=255"`
}

func (i *Interview) Customer() string        { return deref(i.CustomerName) }
func (i *Interview) SetCustomer(name string) { i.CustomerName = optional(name) }
func (i *Interview) RecordID() int64         { return i.ID }
func (i *Interview) SetRecordID(id int64)    { i.ID = id }

func (i *Interview) Values() []any {
	return []any{i.InterviewID, i.CandidateID, i.RequisitionID, i.InterviewRound, i.InterviewDate,
		i.FeedbackDate, i.InterviewResult, i.Interviewer, i.CustomerName}
}

func (i *Interview) Targets() []any {
	return []any{&i.ID, &i.InterviewID, &i.CandidateID, &i.RequisitionID, &i.InterviewRound, &i.InterviewDate,
		&i.FeedbackDate, &i.InterviewResult, &i.Interviewer, &i.CustomerName}
}

// Offer is an offer released to a candidate.
type Offer struct {
	ID                int64      `json:"id"`
	OfferID           *string    `json:"offerId" validate:"omitempty,max=100"`
	CandidateID       string     `json:"candidateId" validate:"max=255"`
	RequisitionID     string     `json:"requisitionId" validate:"max=100"`
	OfferReleasedDate *time.Time `json:"offerReleasedDate"`
	OfferStatus       *string    `json:"offerStatus" validate:"omitempty,max=100"`
	OfferAcceptedDate *time.Time `json:"offerAcceptedDate"`
	ExpectedDoj       *time.Time `json:"expectedDoj"`
	ActualDoj         *time.Time `json:"actualDoj"`
	DeclineReason     *string    `json:"declineReason" validate:"omitempty,max=1000"`
	CustomerName      *string    `json:"customerName" validate:"omitempty,max=255"`
}

func (o *Offer) Customer() string        { return deref(o.CustomerName) }
func (o *Offer) SetCustomer(name string) { o.CustomerName = optional(name) }
func (o *Offer) RecordID() int64         { return o.ID }
func (o *Offer) SetRecordID(id int64)    { o.ID = id }

func (o *Offer) Values() []any {
	return []any{o.OfferID, o.CandidateID, o.RequisitionID, o.OfferReleasedDate, o.OfferStatus,
		o.OfferAcceptedDate, o.ExpectedDoj, o.ActualDoj, o.DeclineReason, o.CustomerName}
}

func (o *Offer) Targets() []any {
	return []any{&o.ID, &o.OfferID, &o.CandidateID, &o.RequisitionID, &o.OfferReleasedDate, &o.OfferStatus,
		&o.OfferAcceptedDate, &o.ExpectedDoj, &o.ActualDoj, &o.DeclineReason, &o.CustomerName}
}

// Joiner tracks an accepted candidate through onboarding. JoiningDate stays
// null until a date of joining is known.
type Joiner struct {
	ID               int64      `json:"id"`
	JoinerID         *string    `json:"joinerId" validate:"omitempty,max=100"`
	CandidateID      string     `json:"candidateId" validate:"max=255"`
	RequisitionID    string     `json:"requisitionId" validate:"max=100"`
	JoiningDate      *time.Time `json:"joiningDate"`
	JoiningStatus    *string    `json:"joiningStatus" validate:"omitempty,max=100"`
	OnboardingStatus *string    `json:"onboardingStatus" validate:"omitempty,max=100"`
	CustomerName     *string    `json:"customerName" validate:"omitempty,max=255"`
}

func (j *Joiner) Customer() string        { return deref(j.CustomerName) }
func (j *Joiner) SetCustomer(name string) { j.CustomerName = optional(name) }
func (j *Joiner) RecordID() int64         { return j.ID }
func (j *Joiner) SetRecordID(id int64)    { j.ID = id }

func (j *Joiner) Values() []any {
	return []any{j.JoinerID, j.CandidateID, j.RequisitionID, j.JoiningDate, j.JoiningStatus,
		j.OnboardingStatus, j.CustomerName}
}

func (j *Joiner) Targets() []any {
	return []any{&j.ID, &j.JoinerID, &j.CandidateID, &j.RequisitionID, &j.JoiningDate, &j.JoiningStatus,
		&j.OnboardingStatus, &j.CustomerName}
}

// Entity descriptors. Column order must match Values.
var (
	ProgramTasks = &Entity{
		Key:   "tasks",
		Label: "Task",
		Table: "program_tasks",
		Columns: []string{"workstream", "deliverable", "status", "duration", "start_date", "end_date",
			"progress", "phase", "milestone", "owner", customerColumn},
		New:     func() Record { return &ProgramTask{} },
		Prepare: prepareProgramTask,
	}

	InfraTasks = &Entity{
		Key:   "infraTasks",
		Label: "Infra task",
		Table: "infra_tasks",
		Columns: []string{"infra_phase", "task_name", "status", "percent_complete", "start_date", "end_date",
			"owner", customerColumn},
		New:     func() Record { return &InfraTask{} },
		Prepare: prepareInfraTask,
	}

	Requisitions = &Entity{
		Key:   "requisitions",
		Label: "Requisition",
		Table: "ta_requisitions",
		Columns: []string{"requisition_id", "job_title", "hiring_manager", "technology", "recruiter",
			"approved_positions", "priority", "requisition_status", "requisition_created_date",
			"target_closure_date", "location", "business_unit", customerColumn},
		New:     func() Record { return &Requisition{} },
		Prepare: prepareRequisition,
	}

	Candidates = &Entity{
		Key:   "candidates",
		Label: "Candidate",
		Table: "ta_candidates",
		Columns: []string{"candidate_id", "requisition_id", "candidate_name", "recruiter", "source",
			"profile_received_date", "profile_status", "current_stage", "stage_entry_date",
			"candidate_status", customerColumn},
		New:     func() Record { return &Candidate{} },
		Prepare: prepareCandidate,
	}

	Interviews = &Entity{
		Key:   "interviews",
		Label: "Interview",
		Table: "ta_interviews",
		Columns: []string{"interview_id", "candidate_id", "requisition_id", "interview_round", "interview_date",
			"feedback_date", "interview_result", "interviewer", customerColumn},
		New: func() Record { return &Interview{} },
	}

	Offers = &Entity{
		Key:   "offers",
		Label: "Offer",
		Table: "ta_offers",
		Columns: []string{"offer_id", "candidate_id", "requisition_id", "offer_released_date", "offer_status",
			"offer_accepted_date", "expected_doj", "actual_doj", "decline_reason", customerColumn},
		New: func() Record { return &Offer{} },
	}

	Joiners = &Entity{
		Key:   "joiners",
		Label: "Joiner",
		Table: "ta_joiners",
		Columns: []string{"joiner_id", "candidate_id", "requisition_id", "joining_date", "joining_status",
			"onboarding_status", customerColumn},
		New: func() Record { return &Joiner{} },
	}
)

// TAEntities lists the TA pipeline entities in pipeline order.
var TAEntities = []*Entity{Requisitions, Candidates, Interviews, Offers, Joiners}

// Entities lists every entity.
func Entities() []*Entity {
	return append([]*Entity{ProgramTasks, InfraTasks}, TAEntities...)
}

// EntityByKey looks up an entity by its key.
func EntityByKey(key string) (*Entity, bool) {
	for _, e := range Entities() {
		if e.Key == key {
			return e, true
		}
	}
	return nil, false
}

// prepareProgramTask derives the duration in whole days from the dates and
// defaults the status.
func prepareProgramTask(rec Record, _ time.Time) {
	t := rec.(*ProgramTask)
	t.Duration = 0
	if t.StartDate != nil && t.EndDate != nil {
		if diff := t.EndDate.Sub(*t.StartDate); diff >= 0 {
			t.Duration = int(math.Ceil(diff.Hours() / 24))
		}
	}
	if strings.TrimSpace(t.Status) == "" {
		t.Status = "WIP"
	}
}

// prepareInfraTask keeps StartDate non-null by falling back to EndDate and
// then to now.
func prepareInfraTask(rec Record, now time.Time) {
	t := rec.(*InfraTask)
	if t.StartDate.IsZero() {
		if t.EndDate != nil {
			t.StartDate = *t.EndDate
		} else {
			t.StartDate = now
		}
	}
	if strings.TrimSpace(t.Status) == "" {
		t.Status = "Planned"
	}
}

func prepareRequisition(rec Record, _ time.Time) {
	r := rec.(*Requisition)
	if strings.TrimSpace(r.RequisitionStatus) == "" {
		r.RequisitionStatus = "Open"
	}
}

// prepareCandidate builds the composite candidate id when none was given.
func prepareCandidate(rec Record, _ time.Time) {
	c := rec.(*Candidate)
	c.CandidateName = strings.TrimSpace(c.CandidateName)
	if strings.TrimSpace(c.CandidateID) == "" {
		c.CandidateID = CandidateKey(c.RequisitionID, c.CandidateName)
	}
}

// CandidateKey is the composite id of a candidate within a requisition.
func CandidateKey(requisitionID, name string) string {
	return strings.TrimSpace(requisitionID) + "-" + strings.TrimSpace(name)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// optional returns nil for blank strings and a trimmed copy otherwise.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
