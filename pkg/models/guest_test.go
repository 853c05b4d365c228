package models

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeRSVPStatus(t *testing.T) {
	cases := map[string]RSVPStatus{
		"":            RSVPPending,
		"   ":         RSVPPending,
		"attending":   RSVPAttending,
		" Declining ": RSVPDeclining,
		"PENDING":     RSVPPending,
		"maybe":       RSVPPending,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeRSVPStatus(in), "input %q", in)
	}
}

func TestNormalizeRSVPStatus_NeverEmpty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("normalized status is always a known value", prop.ForAll(
		func(raw string) bool {
			s := NormalizeRSVPStatus(raw)
			return s == RSVPPending || s == RSVPAttending || s == RSVPDeclining
		},
		gen.AnyString(),
	))

	properties.Property("known spellings keep their meaning", prop.ForAll(
		func(raw string) bool {
			return NormalizeRSVPStatus(raw) != ""
		},
		gen.OneConstOf("", " ", "attending", "declining", "pending", "Attending ", "accepted"),
	))

	properties.TestingRun(t)
}

func TestGuestInputApply(t *testing.T) {
	t.Run("empty status coerces to pending", func(t *testing.T) {
		empty := ""
		g := &Guest{RSVPStatus: RSVPAttending}
		(&GuestInput{RSVPStatus: &empty}).Apply(g)
		assert.Equal(t, RSVPPending, g.RSVPStatus)
	})

	t.Run("omitted status on new guest defaults to pending", func(t *testing.T) {
		name := "Alice"
		g := &Guest{}
		(&GuestInput{Name1: &name}).Apply(g)
		assert.Equal(t, RSVPPending, g.RSVPStatus)
		assert.Equal(t, "Alice", g.Name1)
	})

	t.Run("omitted status keeps existing value", func(t *testing.T) {
		g := &Guest{RSVPStatus: RSVPDeclining}
		(&GuestInput{}).Apply(g)
		assert.Equal(t, RSVPDeclining, g.RSVPStatus)
	})

	t.Run("legacy status alias", func(t *testing.T) {
		legacy := "attending"
		g := &Guest{}
		(&GuestInput{Status: &legacy}).Apply(g)
		assert.Equal(t, RSVPAttending, g.RSVPStatus)
	})

	t.Run("rsvpStatus wins over legacy alias", func(t *testing.T) {
		legacy, current := "attending", "declining"
		g := &Guest{}
		(&GuestInput{Status: &legacy, RSVPStatus: &current}).Apply(g)
		assert.Equal(t, RSVPDeclining, g.RSVPStatus)
	})

	t.Run("token untouched", func(t *testing.T) {
		g := &Guest{Token: "abc"}
		(&GuestInput{}).Apply(g)
		assert.Equal(t, "abc", g.Token)
	})
}

func TestGuestProject(t *testing.T) {
	msg := "see you"
	g := &Guest{
		ID:         7,
		Token:      "secret-token",
		Name1:      "Léa",
		RSVPStatus: RSVPAttending,
		Message:    &msg,
		Wedding:    &Wedding{ID: 1, EventName: "L&M", Date: "2026-06-20"},
	}

	p := g.Project()
	assert.Equal(t, int64(7), p.ID)
	assert.Nil(t, p.Name2)
	assert.Nil(t, p.Gender)
	assert.Equal(t, RSVPAttending, p.Status)
	assert.Equal(t, &msg, p.Message)
	if assert.NotNil(t, p.Wedding) {
		assert.Equal(t, "L&M", p.Wedding.EventName)
	}
	assert.Equal(t, "Léa", p.DisplayName())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Anna", (&Guest{Name1: "Anna"}).DisplayName())
	assert.Equal(t, "Anna & Marc", (&Guest{Name1: "Anna", Name2: "Marc"}).DisplayName())
}
