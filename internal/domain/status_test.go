package domain

import "testing"

func TestEnumValidity(t *testing.T) {
	for _, p := range Platforms() {
		if !p.Valid() {
			t.Fatalf("expected platform %q to be valid", p)
		}
	}
	if Platform("yelp").Valid() {
		t.Fatalf("unexpected valid platform %q", "yelp")
	}

	for _, s := range []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral} {
		if !s.Valid() {
			t.Fatalf("expected sentiment %q to be valid", s)
		}
	}
	if Sentiment("mixed").Valid() {
		t.Fatalf("unexpected valid sentiment %q", "mixed")
	}

	for _, jt := range []JobType{JobTypeInitial, JobTypeScheduled, JobTypeManual} {
		if !jt.Valid() {
			t.Fatalf("expected job type %q to be valid", jt)
		}
	}
	if JobType("retry").Valid() {
		t.Fatalf("unexpected valid job type %q", "retry")
	}

	for _, r := range []ChangeReason{ChangeReasonAIInitial, ChangeReasonAIReanalysis, ChangeReasonUserCorrection} {
		if !r.Valid() {
			t.Fatalf("expected change reason %q to be valid", r)
		}
	}
}

func TestJobStatus_Transitions(t *testing.T) {
	cases := []struct {
		from, to JobStatus
		ok       bool
	}{
		{JobStatusPending, JobStatusInProgress, true},
		{JobStatusPending, JobStatusFailed, true},
		{JobStatusPending, JobStatusCompleted, false},
		{JobStatusInProgress, JobStatusCompleted, true},
		{JobStatusInProgress, JobStatusFailed, true},
		{JobStatusInProgress, JobStatusPending, false},
		{JobStatusCompleted, JobStatusFailed, false},
		{JobStatusCompleted, JobStatusPending, false},
		{JobStatusFailed, JobStatusInProgress, false},
		{JobStatusFailed, JobStatusPending, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.ok {
			t.Fatalf("CanTransition(%s -> %s) = %v; want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestJobStatus_Terminal(t *testing.T) {
	if JobStatusPending.Terminal() || JobStatusInProgress.Terminal() {
		t.Fatalf("pending/in_progress must not be terminal")
	}
	if !JobStatusCompleted.Terminal() || !JobStatusFailed.Terminal() {
		t.Fatalf("completed/failed must be terminal")
	}

	if (SyncJob{Status: JobStatusPending}).Active() != true {
		t.Fatalf("pending job should be active")
	}
	if (SyncJob{Status: JobStatusCompleted}).Active() {
		t.Fatalf("completed job should not be active")
	}
}
