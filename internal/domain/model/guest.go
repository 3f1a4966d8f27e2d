package model

import (
	"fmt"
	"strings"
	"time"
)

type Guest struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	Email      string     `json:"email"`
	Stays      int        `json:"stays"`
	LastStayAt *time.Time `json:"last_stay_at"`
	Flags      []string   `json:"flags"`
	Notes      string     `json:"notes"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func NewGuest(name, phone string) Guest {
	now := time.Now().UTC()
	return Guest{
		ID:        generateID(),
		Name:      strings.TrimSpace(name),
		Phone:     NormalizePhone(phone),
		Flags:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RecordStay returns a copy with one more completed stay ending at checkOut.
func (g Guest) RecordStay(checkOut time.Time) Guest {
	t := checkOut.UTC()
	g.Stays++
	if g.LastStayAt == nil || t.After(*g.LastStayAt) {
		g.LastStayAt = &t
	}
	g.UpdatedAt = time.Now().UTC()
	return g
}

// WithFlag returns a copy carrying flag once.
func (g Guest) WithFlag(flag string) Guest {
	flag = strings.ToLower(strings.TrimSpace(flag))
	if flag == "" {
		return g
	}
	for _, f := range g.Flags {
		if f == flag {
			return g
		}
	}
	flags := make([]string, len(g.Flags), len(g.Flags)+1)
	copy(flags, g.Flags)
	g.Flags = append(flags, flag)
	g.UpdatedAt = time.Now().UTC()
	return g
}

// Assessment renders a short human-readable verdict on the guest.
func (g Guest) Assessment() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Guest %s: ", g.Name)
	switch {
	case g.Stays == 0:
		b.WriteString("no completed stays")
	case g.Stays == 1:
		b.WriteString("1 completed stay")
	default:
		fmt.Fprintf(&b, "%d completed stays", g.Stays)
	}
	if g.LastStayAt != nil {
		fmt.Fprintf(&b, ", last on %s", g.LastStayAt.Format("2006-01-02"))
	}
	b.WriteString(".")
	if len(g.Flags) > 0 {
		fmt.Fprintf(&b, " Flags: %s.", strings.Join(g.Flags, ", "))
	} else if g.Stays > 0 {
		b.WriteString(" No issues recorded.")
	}
	if g.Notes != "" {
		fmt.Fprintf(&b, " Notes: %s", g.Notes)
	}
	return b.String()
}

// NormalizePhone strips formatting so numbers from different gateways match.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
