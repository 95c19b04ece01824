// Package reward owns the goal-completion -> stamp -> bonus transition.
// It performs no I/O; callers serialise access to the user and goal set.
package reward

import (
	"time"

	"github.com/terraincognita07/just/internal/models"
)

const (
	DailyReward = 100
	WeeklyBonus = 700
)

type State int

const (
	// StateIncomplete: at least one goal is pending, or the set is empty.
	StateIncomplete State = iota
	// StateJustCompleted: this evaluation earned today's stamp.
	StateJustCompleted
	// StateAlreadyAwarded: every goal is done but today's stamp was earned earlier.
	StateAlreadyAwarded
)

func (state State) String() string {
	switch state {
	case StateJustCompleted:
		return "just_completed"
	case StateAlreadyAwarded:
		return "already_awarded"
	default:
		return "incomplete"
	}
}

func (state State) MarshalText() ([]byte, error) {
	return []byte(state.String()), nil
}

type Outcome struct {
	Found              bool  `json:"found"`
	Day                int   `json:"day"`
	State              State `json:"state"`
	StampAwarded       bool  `json:"stamp_awarded"`
	WeeklyBonusAwarded bool  `json:"weekly_bonus_awarded"`
	PointsAwarded      int   `json:"points_awarded"`
}

type Machine struct {
	now      func() time.Time
	location *time.Location
}

func NewMachine(now func() time.Time, location *time.Location) *Machine {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.Local
	}
	return &Machine{now: now, location: location}
}

// Weekday is the stamp slot for the current moment: 0 is Sunday.
func (machine *Machine) Weekday() int {
	return int(machine.now().In(machine.location).Weekday())
}

// Toggle flips the completion flag of goalID and evaluates the set. An
// unknown id changes nothing. Un-completing a goal never retracts a stamp or
// points that were already awarded.
func (machine *Machine) Toggle(user *models.User, goals []models.Goal, goalID string) Outcome {
	index := indexOf(goals, goalID)
	if index < 0 {
		return Outcome{Found: false, Day: machine.Weekday()}
	}

	goals[index].Completed = !goals[index].Completed
	outcome := machine.Evaluate(user, goals)
	outcome.Found = true
	return outcome
}

// Evaluate awards today's stamp when every goal is complete and the stamp is
// still open. The weekly bonus is paid only by the evaluation that fills the
// last open slot, so it cannot fire twice for the same week.
func (machine *Machine) Evaluate(user *models.User, goals []models.Goal) Outcome {
	day := machine.Weekday()
	outcome := Outcome{Day: day, State: StateIncomplete}

	if !AllCompleted(goals) {
		return outcome
	}
	if user.Stamps[day] {
		outcome.State = StateAlreadyAwarded
		return outcome
	}

	user.Stamps[day] = true
	user.Points += DailyReward
	user.Streak++
	outcome.State = StateJustCompleted
	outcome.StampAwarded = true
	outcome.PointsAwarded = DailyReward

	if user.AllStamped() {
		user.Points += WeeklyBonus
		outcome.WeeklyBonusAwarded = true
		outcome.PointsAwarded += WeeklyBonus
	}
	return outcome
}

func AllCompleted(goals []models.Goal) bool {
	if len(goals) == 0 {
		return false
	}
	for _, goal := range goals {
		if !goal.Completed {
			return false
		}
	}
	return true
}

func CompletedCount(goals []models.Goal) int {
	count := 0
	for _, goal := range goals {
		if goal.Completed {
			count++
		}
	}
	return count
}

// ProgressPercent rounds down; an empty set is 0%.
func ProgressPercent(goals []models.Goal) int {
	if len(goals) == 0 {
		return 0
	}
	return CompletedCount(goals) * 100 / len(goals)
}

func indexOf(goals []models.Goal, goalID string) int {
	for index := range goals {
		if goals[index].ID == goalID {
			return index
		}
	}
	return -1
}
