package services

import "github.com/terraincognita07/just/internal/models"

type PeerService struct {
	friends []models.Friend
}

func NewPeerService() *PeerService {
	return &PeerService{friends: []models.Friend{
		{ID: "1", Nickname: "공부왕", IsOnline: true, StudyTimeMinutes: 120, GoalRate: 80, StatusMessage: "오늘 끝까지 달린다"},
		{ID: "2", Nickname: "새벽반", IsOnline: true, StudyTimeMinutes: 45, GoalRate: 30, StatusMessage: "졸리다..."},
		{ID: "3", Nickname: "JustDoIt", IsOnline: false, StudyTimeMinutes: 200, GoalRate: 100, StatusMessage: "완료"},
	}}
}

// List returns online peers first, keeping the original order within each group.
func (service *PeerService) List() []models.Friend {
	peers := make([]models.Friend, 0, len(service.friends))
	for _, friend := range service.friends {
		if friend.IsOnline {
			peers = append(peers, friend)
		}
	}
	for _, friend := range service.friends {
		if !friend.IsOnline {
			peers = append(peers, friend)
		}
	}
	return peers
}
