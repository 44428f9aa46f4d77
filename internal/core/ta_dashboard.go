package core

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// TATrackerData is the full TA pipeline, each list ordered by id.
type TATrackerData struct {
	Requisitions []*Requisition `json:"requisitions"`
	Candidates   []*Candidate   `json:"candidates"`
	Interviews   []*Interview   `json:"interviews"`
	Offers       []*Offer       `json:"offers"`
	Joiners      []*Joiner      `json:"joiners"`
}

// TATiles are the headline numbers of the TA dashboard.
type TATiles struct {
	TotalApprovedDemand     int `json:"totalApprovedDemand"`
	TotalJoiners            int `json:"totalJoiners"`
	OffersAcceptedYetToJoin int `json:"offersAcceptedYetToJoin"`
	OffersInProgress        int `json:"offersInProgress"`
	OffersDeclined          int `json:"offersDeclined"`
	OpenActivePositions     int `json:"openActivePositions"`
	PositionsOnHold         int `json:"positionsOnHold"`
	CancelledPositions      int `json:"cancelledPositions"`
	AvgPositionAgeing       int `json:"avgPositionAgeing"`
	AvgProfileAgeing        int `json:"avgProfileAgeing"`
	AvgTimeToFill           int `json:"avgTimeToFill"`
	AvgTimeToStart          int `json:"avgTimeToStart"`
}

// TechnologyDemand is demand against fulfilment for one technology.
type TechnologyDemand struct {
	Technology     string `json:"technology"`
	ApprovedDemand int    `json:"approvedDemand"`
	Joined         int    `json:"joined"`
	OffersAccepted int    `json:"offersAccepted"`
	InProgress     int    `json:"inProgress"`
	OpenActive     int    `json:"openActive"`
	OnHold         int    `json:"onHold"`
	Cancelled      int    `json:"cancelled"`
}

// RecruiterPerformance is the pipeline snapshot of one recruiter.
type RecruiterPerformance struct {
	Recruiter           string `json:"recruiter"`
	PositionsAssigned   int    `json:"positionsAssigned"`
	ProfilesSubmitted   int    `json:"profilesSubmitted"`
	InterviewsScheduled int    `json:"interviewsScheduled"`
	OffersReleased      int    `json:"offersReleased"`
	Joiners             int    `json:"joiners"`
	AvgTatDays          int    `json:"avgTatDays"`
}

// TADashboard is the TA summary view.
type TADashboard struct {
	Tiles                TATiles                `json:"tiles"`
	DemandByTechnology   []TechnologyDemand     `json:"demandByTechnology"`
	RecruiterPerformance []RecruiterPerformance `json:"recruiterPerformance"`
	AgeingRisk           []any                  `json:"ageingRisk"`
}

// TATracker loads all five TA lists for the view.
func (s *Service) TATracker(ctx context.Context, view View) (*TATrackerData, error) {
	lists := make([][]Record, len(TAEntities))

	g, gctx := errgroup.WithContext(ctx)
	for i, e := range TAEntities {
		i, e := i, e
		g.Go(func() error {
			recs, err := s.store.ListRecords(gctx, e, view.Customer)
			if err != nil {
				return fmt.Errorf("list %s: %w", e.Key, err)
			}
			lists[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &TATrackerData{
		Requisitions: typed[*Requisition](lists[0]),
		Candidates:   typed[*Candidate](lists[1]),
		Interviews:   typed[*Interview](lists[2]),
		Offers:       typed[*Offer](lists[3]),
		Joiners:      typed[*Joiner](lists[4]),
	}, nil
}

// TADashboard computes the TA summary for the view.
func (s *Service) TADashboard(ctx context.Context, view View) (*TADashboard, error) {
	data, err := s.TATracker(ctx, view)
	if err != nil {
		return nil, err
	}
	return BuildTADashboard(data, s.now()), nil
}

// BuildTADashboard derives the dashboard from the pipeline lists. Status
// comparisons ignore case.
func BuildTADashboard(d *TATrackerData, now time.Time) *TADashboard {
	var tiles TATiles

	for _, r := range d.Requisitions {
		tiles.TotalApprovedDemand += r.ApprovedPositions
		switch lower(r.RequisitionStatus) {
		case "open":
			tiles.OpenActivePositions++
		case "on hold":
			tiles.PositionsOnHold++
		case "cancelled":
			tiles.CancelledPositions++
		}
	}
	for _, j := range d.Joiners {
		if lowerPtr(j.JoiningStatus) == "joined" {
			tiles.TotalJoiners++
		}
	}
	for _, o := range d.Offers {
		switch lowerPtr(o.OfferStatus) {
		case "accepted":
			if o.ActualDoj == nil {
				tiles.OffersAcceptedYetToJoin++
			}
		case "pending", "in process":
			tiles.OffersInProgress++
		case "declined":
			tiles.OffersDeclined++
		}
	}

	var ageingSum float64
	var ageingN int
	for _, r := range d.Requisitions {
		if r.RequisitionCreatedDate == nil {
			continue
		}
		ageingSum += now.Sub(*r.RequisitionCreatedDate).Hours() / 24
		ageingN++
	}
	if ageingN > 0 {
		tiles.AvgPositionAgeing = int(math.Round(ageingSum / float64(ageingN)))
	}

	return &TADashboard{
		Tiles:                tiles,
		DemandByTechnology:   demandByTechnology(d),
		RecruiterPerformance: recruiterPerformance(d),
		AgeingRisk:           []any{},
	}
}

func demandByTechnology(d *TATrackerData) []TechnologyDemand {
	var out []TechnologyDemand
	index := make(map[string]int)
	bucket := func(tech string) *TechnologyDemand {
		i, ok := index[tech]
		if !ok {
			i = len(out)
			index[tech] = i
			out = append(out, TechnologyDemand{Technology: tech})
		}
		return &out[i]
	}

	// First requisition wins when ids repeat.
	techByReq := make(map[string]string)
	for _, r := range d.Requisitions {
		tech := orDefault(r.Technology, "Unknown")
		if _, seen := techByReq[r.RequisitionID]; !seen {
			techByReq[r.RequisitionID] = tech
		}

		b := bucket(tech)
		b.ApprovedDemand += r.ApprovedPositions
		switch lower(r.RequisitionStatus) {
		case "open":
			b.OpenActive++
		case "on hold":
			b.OnHold++
		case "cancelled":
			b.Cancelled++
		}
	}
	techFor := func(reqID string) string {
		if tech, ok := techByReq[reqID]; ok {
			return tech
		}
		return "Unknown"
	}

	for _, j := range d.Joiners {
		b := bucket(techFor(j.RequisitionID))
		if lowerPtr(j.JoiningStatus) == "joined" {
			b.Joined++
		}
	}
	for _, o := range d.Offers {
		b := bucket(techFor(o.RequisitionID))
		switch lowerPtr(o.OfferStatus) {
		case "accepted":
			b.OffersAccepted++
		case "pending", "in process":
			b.InProgress++
		}
	}

	if out == nil {
		out = []TechnologyDemand{}
	}
	return out
}

func recruiterPerformance(d *TATrackerData) []RecruiterPerformance {
	out := []RecruiterPerformance{}
	index := make(map[string]int)

	recruiterByCandidate := make(map[string]string)
	for _, c := range d.Candidates {
		key := orDefault(c.Recruiter, "Unassigned")
		if _, seen := recruiterByCandidate[c.CandidateID]; !seen {
			recruiterByCandidate[c.CandidateID] = key
		}

		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, RecruiterPerformance{Recruiter: key})
		}
		out[i].ProfilesSubmitted++
	}

	// Offers are credited to the recruiter of the matching candidate. Offers
	// whose recruiter has no submitted profiles are not counted.
	for _, o := range d.Offers {
		key, ok := recruiterByCandidate[o.CandidateID]
		if !ok {
			key = "Unassigned"
		}
		i, ok := index[key]
		if !ok {
			continue
		}
		out[i].OffersReleased++
		if lowerPtr(o.OfferStatus) == "accepted" {
			out[i].Joiners++
		}
	}
	return out
}

func typed[T Record](recs []Record) []T {
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		if t, ok := r.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

func lower(s string) string { return strings.ToLower(s) }

func lowerPtr(s *string) string { return strings.ToLower(deref(s)) }

func orDefault(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}
