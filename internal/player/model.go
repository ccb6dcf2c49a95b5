// internal/player/model.go
//
// Player record model and wire payloads.
//
// Context
// -------
// A Player is one row of the admin table.  The shape mirrors the JSON the
// players backend produces on `GET /rest/players`, so the struct is decoded
// straight off the wire and rendered without an intermediate DTO.
//
// Birthday travels as epoch milliseconds.  EpochMillis keeps that encoding
// explicit and offers conversions to time.Time for display.
//
// Notes
// -----
//   - Create and update payloads are separate types on purpose: updates never
//     carry level or birthday.
//   - Oxford commas, two spaces after periods.
package player

import (
	"time"
)

// Race is the closed set of character races.
type Race string

const (
	RaceHuman  Race = "HUMAN"
	RaceDwarf  Race = "DWARF"
	RaceElf    Race = "ELF"
	RaceGiant  Race = "GIANT"
	RaceOrc    Race = "ORC"
	RaceTroll  Race = "TROLL"
	RaceHobbit Race = "HOBBIT"
)

// Races lists every race in display order.
var Races = []Race{RaceHuman, RaceDwarf, RaceElf, RaceGiant, RaceOrc, RaceTroll, RaceHobbit}

// Valid reports whether r is one of Races.
func (r Race) Valid() bool {
	for _, v := range Races {
		if v == r {
			return true
		}
	}
	return false
}

// Profession is the closed set of character professions.
type Profession string

const (
	ProfessionWarrior  Profession = "WARRIOR"
	ProfessionRogue    Profession = "ROGUE"
	ProfessionSorcerer Profession = "SORCERER"
	ProfessionCleric   Profession = "CLERIC"
	ProfessionPaladin  Profession = "PALADIN"
	ProfessionNazgul   Profession = "NAZGUL"
	ProfessionWarlock  Profession = "WARLOCK"
	ProfessionDruid    Profession = "DRUID"
)

// Professions lists every profession in display order.
var Professions = []Profession{
	ProfessionWarrior, ProfessionRogue, ProfessionSorcerer, ProfessionCleric,
	ProfessionPaladin, ProfessionNazgul, ProfessionWarlock, ProfessionDruid,
}

// Valid reports whether p is one of Professions.
func (p Profession) Valid() bool {
	for _, v := range Professions {
		if v == p {
			return true
		}
	}
	return false
}

// RaceNames returns Races as plain strings (select options).
func RaceNames() []string {
	out := make([]string, len(Races))
	for i, r := range Races {
		out[i] = string(r)
	}
	return out
}

// ProfessionNames returns Professions as plain strings (select options).
func ProfessionNames() []string {
	out := make([]string, len(Professions))
	for i, p := range Professions {
		out[i] = string(p)
	}
	return out
}

// EpochMillis is a point in time encoded as milliseconds since the Unix epoch.
type EpochMillis int64

// FromTime converts t to EpochMillis.
func FromTime(t time.Time) EpochMillis { return EpochMillis(t.UnixMilli()) }

// Time returns the UTC instant.
func (m EpochMillis) Time() time.Time { return time.UnixMilli(int64(m)).UTC() }

// Player mirrors one record served by the backend.
type Player struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Title      string      `json:"title"`
	Race       Race        `json:"race"`
	Profession Profession  `json:"profession"`
	Level      int         `json:"level"`
	Birthday   EpochMillis `json:"birthday"`
	Banned     bool        `json:"banned"`
}

// CreateRequest is the body of `POST /rest/players`.
type CreateRequest struct {
	Name       string      `json:"name"`
	Title      string      `json:"title"`
	Race       Race        `json:"race"`
	Profession Profession  `json:"profession"`
	Birthday   EpochMillis `json:"birthday"`
	Banned     bool        `json:"banned"`
	Level      int         `json:"level"`
}

// UpdateRequest is the body of `POST /rest/players/{id}`.  Level and birthday
// are only settable at creation.
type UpdateRequest struct {
	Name       string     `json:"name"`
	Title      string     `json:"title"`
	Race       Race       `json:"race"`
	Profession Profession `json:"profession"`
	Banned     bool       `json:"banned"`
}
