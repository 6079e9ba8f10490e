package internal

import "context"

const ContextActorKey ctxKey = "actor"

// Actor is the authenticated principal attached to a request, flattened to
// the fields assignment gating needs.
type Actor struct {
	ID           int64
	Username     string
	IsAdmin      bool
	IsSuperAdmin bool
	Rank         int
}

// EffectiveRank normalizes the stored rank: super admins always act at the
// top rank even when the stored value is lower.
func (a Actor) EffectiveRank() int {
	if a.IsSuperAdmin && a.Rank < 3 {
		return 3
	}
	return a.Rank
}

func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ContextActorKey, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(ContextActorKey).(Actor)
	return actor, ok
}
