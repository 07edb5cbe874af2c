package services

import "context"

type actorKey struct{}

// WithActor records the identity performing a verification so
// verified_by reflects the operator, not the framework.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored in ctx, or "" when none is set.
func ActorFrom(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}
