package session

import (
	"slices"

	"github.com/DhavalSuthar-24/clubhub/internal/auth"
	"github.com/DhavalSuthar-24/clubhub/internal/user"
)

// Tree identifies one of the disjoint navigation trees a client can show.
type Tree string

const (
	TreeAdmin   Tree = "admin"
	TreeManager Tree = "manager"
	TreePlayer  Tree = "player"
	TreeGuest   Tree = "guest"
)

// SelectNavigationTree never fails: anything it does not recognise lands on
// the guest tree.
func SelectNavigationTree(identity *auth.Identity, role user.Role) Tree {
	if identity == nil {
		return TreeGuest
	}
	switch role {
	case user.RoleAdmin:
		return TreeAdmin
	case user.RoleManager:
		return TreeManager
	case user.RolePlayer:
		return TreePlayer
	}
	return TreeGuest
}

var sharedScreens = []string{
	"Profile", "EditProfile",
	"Events", "EventDetails",
	"News", "NewsDetails",
	"Team", "TeamDetails",
	"PlayersScreen", "PlayerDetails",
	"RegisterTeam",
}

var treeScreens = map[Tree][]string{
	TreeAdmin:   append([]string{"AdminDashboard", "CreateEvent", "CreateNews", "ManageTeams", "ManagePlayers"}, sharedScreens...),
	TreeManager: append([]string{"ManagerDashboard", "TeamManagement", "PlayerManagement", "CreateEvent", "CreateNews"}, sharedScreens...),
	TreePlayer:  append([]string{"PlayersScreen"}, slices.DeleteFunc(slices.Clone(sharedScreens), func(s string) bool { return s == "PlayersScreen" })...),
	TreeGuest:   {"Login", "Register", "ForgotPassword"},
}

// Screens lists the screens reachable in a tree; the first one is the entry screen.
func Screens(t Tree) []string {
	s, ok := treeScreens[t]
	if !ok {
		s = treeScreens[TreeGuest]
	}
	return slices.Clone(s)
}
