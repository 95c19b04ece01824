package models

const StampDays = 7

// User is the per-session profile created at onboarding. Only the reward
// machine mutates Points, Streak and Stamps.
type User struct {
	Nickname string          `json:"nickname"`
	IsPublic bool            `json:"is_public"`
	Points   int             `json:"points"`
	Streak   int             `json:"streak"`
	Stamps   [StampDays]bool `json:"stamps"`
}

func NewUser(nickname string, isPublic bool) *User {
	return &User{
		Nickname: nickname,
		IsPublic: isPublic,
	}
}

func (user *User) AllStamped() bool {
	for _, stamped := range user.Stamps {
		if !stamped {
			return false
		}
	}
	return true
}

func (user *User) StampCount() int {
	count := 0
	for _, stamped := range user.Stamps {
		if stamped {
			count++
		}
	}
	return count
}
