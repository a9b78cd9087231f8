package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSession_WinRate(t *testing.T) {
	a := assert.New(t)

	s := &Session{}
	a.Equal(0, s.WinRate())

	s = &Session{TotalWins: 1, TotalLoses: 1, TotalGames: 3}
	a.Equal(33, s.WinRate())

	s = &Session{TotalWins: 2, TotalLoses: 1, TotalGames: 3}
	a.Equal(67, s.WinRate())

	p := s.Profile()
	a.Equal(67, p.WinRate)
	a.Equal(3, p.TotalGames)
}

func TestSession_recordOutcome(t *testing.T) {
	a := assert.New(t)
	s := &Session{}

	s.recordOutcome(true, false)
	s.recordOutcome(false, true)
	s.recordOutcome(false, false)

	a.Equal(3, s.TotalGames)
	a.Equal(1, s.TotalWins)
	a.Equal(1, s.TotalLoses)
}

func TestSession_Clone(t *testing.T) {
	a := assert.New(t)
	avatar := "https://example.com/a.png"
	s := &Session{Username: "a", Avatar: &avatar}

	cp := s.Clone()
	*cp.Avatar = "changed"
	cp.Username = "b"

	a.Equal("https://example.com/a.png", *s.Avatar)
	a.Equal("a", s.Username)
	a.Nil((&Session{}).Clone().Avatar)
}

func TestValidateProfile(t *testing.T) {
	a := assert.New(t)
	ptr := func(s string) *string {
		return &s
	}

	a.NoError(ValidateProfile("Lucky Ace", nil))
	a.NoError(ValidateProfile("player_1-ü", ptr("https://example.com/me.png")))
	a.NoError(ValidateProfile(strings.Repeat("a", 40), ptr("http://example.com")))

	var userErr UserError
	a.ErrorAs(ValidateProfile("", nil), &userErr)
	a.ErrorAs(ValidateProfile(strings.Repeat("a", 41), nil), &userErr)
	a.ErrorAs(ValidateProfile("<script>", nil), &userErr)
	a.ErrorAs(ValidateProfile("ok", ptr("javascript:alert(1)")), &userErr)
	a.ErrorAs(ValidateProfile("ok", ptr("/relative.png")), &userErr)
	a.ErrorAs(ValidateProfile("ok", ptr("https://example.com/"+strings.Repeat("a", 2048))), &userErr)
}
