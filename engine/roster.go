package engine

import (
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"gamesearch/game"
	"gamesearch/player"
)

// Roster binds agents to roles. One agent may play several roles, in which case it searches
// for all of them at once. A Roster is not safe for concurrent rebinding.
type Roster struct {
	agents map[game.Role]player.Agent
}

func NewRoster() *Roster {
	return &Roster{agents: map[game.Role]player.Agent{}}
}

// Bind checks that agent can play state before binding it, so that unsupported games are
// refused before any search starts.
func (r *Roster) Bind(role game.Role, agent player.Agent, state game.State) error {
	if role < 0 || int(role) >= state.NumRoles() {
		return fmt.Errorf("role %d out of range [0, %d)", role, state.NumRoles())
	}
	if !agent.CanPlay(state) {
		return fmt.Errorf("%w: %s", player.ErrCannotPlayGame, agent.Name())
	}
	r.agents[role] = agent
	return nil
}

func (r *Roster) Unbind(role game.Role) {
	delete(r.agents, role)
}

func (r *Roster) Agent(role game.Role) (player.Agent, bool) {
	agent, ok := r.agents[role]
	return agent, ok
}

// RolesOf returns the roles bound to agent in increasing order.
func (r *Roster) RolesOf(agent player.Agent) game.Roles {
	roles := game.Roles{}
	for role, bound := range r.agents {
		if bound == agent {
			roles = append(roles, role)
		}
	}
	slices.Sort(roles)
	return roles
}

func (r *Roster) Roles() game.Roles {
	roles := game.Roles(lo.Keys(r.agents))
	slices.Sort(roles)
	return roles
}
