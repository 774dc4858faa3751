// Package share encodes a session into a shareable URL and back.
package share

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/cbegin/loopify-go/internal/effects"
	"github.com/cbegin/loopify-go/internal/pattern"
)

// ErrMalformed is returned for payloads that cannot be restored.
var ErrMalformed = errors.New("share: malformed payload")

const (
	// QueryKey is the query parameter that carries the payload.
	QueryKey = "data"

	MinTempo = 60
	MaxTempo = 200
)

// Payload is the shareable part of a session.
type Payload struct {
	Tempo             int
	Mood              pattern.Mood
	ActiveInstruments []pattern.Role
	Effects           effects.Config
}

type wireEffect struct {
	Enabled   bool     `json:"enabled"`
	Wet       *float64 `json:"wet,omitempty"`
	Amount    *float64 `json:"amount,omitempty"`
	Frequency *float64 `json:"frequency,omitempty"`
}

type wirePayload struct {
	Tempo             int                   `json:"tempo"`
	Mood              string                `json:"mood"`
	ActiveInstruments []string              `json:"activeInstruments"`
	Effects           map[string]wireEffect `json:"effects"`
}

func (w *wireEffect) param(name string) **float64 {
	switch name {
	case "amount":
		return &w.Amount
	case "frequency":
		return &w.Frequency
	default:
		return &w.Wet
	}
}

// Encode returns origin with the payload attached as <origin>?data=<json>.
func Encode(origin string, p Payload) (string, error) {
	w := wirePayload{
		Tempo:             p.Tempo,
		Mood:              string(p.Mood),
		ActiveInstruments: make([]string, 0, len(p.ActiveInstruments)),
		Effects:           make(map[string]wireEffect, len(p.Effects)),
	}
	for _, r := range p.ActiveInstruments {
		w.ActiveInstruments = append(w.ActiveInstruments, string(r))
	}
	for _, kind := range effects.Kinds {
		s, ok := p.Effects[kind]
		if !ok {
			continue
		}
		we := wireEffect{Enabled: s.Enabled}
		v := kind.ParamValue(s.Intensity)
		*we.param(kind.ParamName()) = &v
		w.Effects[string(kind)] = we
	}
	data, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("share: encode: %w", err)
	}
	q := url.Values{QueryKey: {string(data)}}
	return strings.TrimSuffix(origin, "?") + "?" + q.Encode(), nil
}

// Decode parses a URL produced by Encode. Any invalid field makes the whole
// payload invalid. Effects missing from the payload keep their defaults.
func Decode(raw string) (Payload, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	data := u.Query().Get(QueryKey)
	if data == "" {
		return Payload{}, fmt.Errorf("%w: missing %q parameter", ErrMalformed, QueryKey)
	}
	var w wirePayload
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if w.Tempo < MinTempo || w.Tempo > MaxTempo {
		return Payload{}, fmt.Errorf("%w: tempo %d out of range", ErrMalformed, w.Tempo)
	}
	mood, err := pattern.ParseMood(w.Mood)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	p := Payload{Tempo: w.Tempo, Mood: mood, Effects: effects.DefaultConfig()}
	seen := map[pattern.Role]bool{}
	for _, name := range w.ActiveInstruments {
		role, err := pattern.ParseRole(name)
		if err != nil {
			return Payload{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if !seen[role] {
			seen[role] = true
			p.ActiveInstruments = append(p.ActiveInstruments, role)
		}
	}
	for name, we := range w.Effects {
		kind, err := effects.ParseKind(name)
		if err != nil {
			return Payload{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		s := p.Effects[kind]
		s.Enabled = we.Enabled
		if v := *we.param(kind.ParamName()); v != nil {
			if math.IsNaN(*v) || math.IsInf(*v, 0) {
				return Payload{}, fmt.Errorf("%w: %s %s is not a number", ErrMalformed, kind, kind.ParamName())
			}
			s.Intensity = kind.Intensity(*v)
		}
		p.Effects[kind] = s
	}
	return p, nil
}
