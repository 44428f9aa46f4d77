package trackers

import (
	"time"

	"github.com/JonMunkholm/controltower/internal/core"
	"github.com/JonMunkholm/controltower/internal/ingest"
)

func init() {
	registerTA()
}

// Sheet names of a TA workbook. Only the requisition sheet is required; it
// falls back to the first sheet when it is not named.
const (
	sheetRequisitions = "Open_Requisition_Tracker"
	sheetCandidates   = "Candidate_Pipeline"
	sheetInterviews   = "Interview_TAT"
	sheetOffers       = "Offer_Lifecycle"
	sheetJoiners      = "Joiner_Pipeline"
)

// exact binds a field to one compact header.
func exact(name, header string) ingest.Field {
	return ingest.Field{Name: name, Aliases: []string{header}}
}

// optionalExact is exact for columns most workbooks do not carry.
func optionalExact(name, header string) ingest.Field {
	f := exact(name, header)
	f.Optional = true
	return f
}

// taSheet fills in what every TA sheet shares: compact headers, exact
// matching and the customer column.
func taSheet(sheet string, fields []ingest.Field, m ingest.MapFunc) ingest.SheetSpec {
	return ingest.SheetSpec{
		Sheet:  sheet,
		Header: ingest.CompactHeader,
		Mode:   ingest.MatchExact,
		Fields: append(fields, ingest.CustomerField()),
		Map:    m,
	}
}

func requisitionSheet() ingest.SheetSpec {
	spec := taSheet(sheetRequisitions, []ingest.Field{
		exact("jobId", "jobid"),
		exact("jobTitle", "jobtitle"),
		exact("hiringManager", "hiringmanager"),
		exact("technology", "technology"),
		exact("openPositions", "openpositions"),
		exact("status", "status"),
		optionalExact("ageing", "ageing(days)"),
		exact("priority", "priority"),
	}, mapRequisition)
	spec.FallbackToFirst = true
	spec.Required = true
	spec.EmptyMessage = "Requisition sheet has no data rows"
	return spec
}

// mapRequisition derives the created date from the ageing column when the
// sheet carries one.
func mapRequisition(r ingest.Row) (ingest.Record, bool) {
	var created *time.Time
	if days, ok := ingest.ParseNumber(r.Raw("ageing")); ok && days >= 0 {
		d := ingest.Today(r.Now).AddDate(0, 0, -int(days))
		created = &d
	}

	return &core.Requisition{
		RequisitionID:          r.Text("jobId"),
		JobTitle:               r.Text("jobTitle"),
		HiringManager:          r.Optional("hiringManager"),
		Technology:             r.Optional("technology"),
		ApprovedPositions:      r.Int("openPositions"),
		Priority:               r.Optional("priority"),
		RequisitionStatus:      r.TextOr("status", "Open"),
		RequisitionCreatedDate: created,
		CustomerName:           r.Optional("customerName"),
	}, true
}

func candidateSheet() ingest.SheetSpec {
	return taSheet(sheetCandidates, []ingest.Field{
		exact("jobId", "jobid"),
		exact("candidateName", "candidatename"),
		optionalExact("candidateId", "candidateid"),
		exact("recruiter", "recruiter"),
		optionalExact("taScreening", "tascreening"),
		optionalExact("hmScreening", "hmscreening"),
		optionalExact("int1", "int1"),
		optionalExact("int2", "int2"),
		exact("advanced", "advanced"),
		exact("currentStatus", "currentstatus"),
	}, mapCandidate)
}

// mapCandidate skips rows without a candidate name. The candidate id is
// "<jobId>-<name>" unless the sheet has its own id column.
func mapCandidate(r ingest.Row) (ingest.Record, bool) {
	name := r.Text("candidateName")
	if name == "" {
		return nil, false
	}

	id := r.Text("candidateId")
	if id == "" {
		id = core.CandidateKey(r.Text("jobId"), name)
	}
	status := r.Optional("currentStatus")

	return &core.Candidate{
		CandidateID:     id,
		RequisitionID:   r.Text("jobId"),
		CandidateName:   name,
		Recruiter:       r.Optional("recruiter"),
		ProfileStatus:   status,
		CurrentStage:    r.Optional("advanced"),
		CandidateStatus: status,
		CustomerName:    r.Optional("customerName"),
	}, true
}

func interviewSheet() ingest.SheetSpec {
	return taSheet(sheetInterviews, []ingest.Field{
		exact("jobId", "jobid"),
		exact("candidate", "candidate"),
		exact("round", "interviewround"),
		exact("interviewDate", "interviewdate"),
		exact("feedbackDate", "feedbackdate"),
		exact("status", "status"),
	}, mapInterview)
}

func mapInterview(r ingest.Row) (ingest.Record, bool) {
	return &core.Interview{
		CandidateID:     r.Text("candidate"),
		RequisitionID:   r.Text("jobId"),
		InterviewRound:  r.Optional("round"),
		InterviewDate:   r.Date("interviewDate", nil),
		FeedbackDate:    r.Date("feedbackDate", nil),
		InterviewResult: r.Optional("status"),
		CustomerName:    r.Optional("customerName"),
	}, true
}

func offerSheet() ingest.SheetSpec {
	return taSheet(sheetOffers, []ingest.Field{
		exact("jobId", "jobid"),
		exact("candidate", "candidate"),
		exact("offerReleasedDate", "offerreleaseddate"),
		exact("offerStatus", "offerstatus"),
		exact("expectedDoj", "expecteddoj"),
		exact("actualDoj", "actualdoj"),
		exact("remarks", "remarks"),
	}, mapOffer)
}

func mapOffer(r ingest.Row) (ingest.Record, bool) {
	return &core.Offer{
		CandidateID:       r.Text("candidate"),
		RequisitionID:     r.Text("jobId"),
		OfferReleasedDate: r.Date("offerReleasedDate", nil),
		OfferStatus:       r.Optional("offerStatus"),
		ExpectedDoj:       r.Date("expectedDoj", nil),
		ActualDoj:         r.Date("actualDoj", nil),
		DeclineReason:     r.Optional("remarks"),
		CustomerName:      r.Optional("customerName"),
	}, true
}

func joinerSheet() ingest.SheetSpec {
	return taSheet(sheetJoiners, []ingest.Field{
		optionalExact("hiringManager", "hiringmanager"),
		exact("jobId", "jobid"),
		exact("candidate", "candidate"),
		optionalExact("offerAcceptedDate", "offeraccepteddate"),
		exact("doj", "doj"),
		exact("status", "status"),
		exact("dropRisk", "droprisk"),
	}, mapJoiner)
}

// mapJoiner leaves JoiningDate null when the DOJ cell is blank.
func mapJoiner(r ingest.Row) (ingest.Record, bool) {
	return &core.Joiner{
		CandidateID:      r.Text("candidate"),
		RequisitionID:    r.Text("jobId"),
		JoiningDate:      r.Date("doj", nil),
		JoiningStatus:    r.Optional("status"),
		OnboardingStatus: r.Optional("dropRisk"),
		CustomerName:     r.Optional("customerName"),
	}, true
}

func registerTA() {
	core.RegisterTracker(core.Tracker{
		Key:     "ta",
		Label:   "TA Tracker",
		Message: "TA tracker data replaced from Excel",
		Scoped:  true,
		Sheets: []core.TrackerSheet{
			{Entity: core.Requisitions, Spec: requisitionSheet()},
			{Entity: core.Candidates, Spec: candidateSheet()},
			{Entity: core.Interviews, Spec: interviewSheet()},
			{Entity: core.Offers, Spec: offerSheet()},
			{Entity: core.Joiners, Spec: joinerSheet()},
		},
		NestedCounts: true,
	})
}
