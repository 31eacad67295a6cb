package jwt

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
)

type actorCtxKey struct{}

// ContextWithActor attaches an already-resolved actor, used by background jobs
// that run without a request token.
func ContextWithActor(ctx context.Context, actor user.Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey{}, actor)
}

// ActorFromContext returns the actor attached with ContextWithActor or, failing
// that, the one described by the verified token claims.
func ActorFromContext(ctx context.Context) (user.Actor, error) {
	if actor, ok := ctx.Value(actorCtxKey{}).(user.Actor); ok {
		return actor, nil
	}

	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return user.Actor{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	if token == nil {
		return user.Actor{}, user.ErrActorMissing
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return user.Actor{}, user.ErrCompanyIDRequired
	}

	userID, _ := claims["user_id"].(string)
	employeeID, _ := claims["employee_id"].(string)
	role, _ := claims["role"].(string)

	return user.Actor{
		UserID:     userID,
		CompanyID:  companyID,
		EmployeeID: employeeID,
		Role:       user.Role(role),
	}, nil
}
