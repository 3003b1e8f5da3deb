package sequences

import (
	"context"
	"fmt"
	"net/http"

	"github.com/interoplab/conformd/evidence"
	"github.com/interoplab/conformd/types"
)

// Authorization probes the target's credential handling: unauthenticated
// access must be rejected and the configured bearer credential accepted.
func Authorization() types.Sequence {
	return types.Sequence{
		ID:          "authorization",
		Title:       "Authorization handling",
		Description: "Verifies the target rejects unauthenticated requests and honors the configured bearer credential.",
		Tests: []types.Test{
			{
				ID:          "reject-unauthenticated",
				Title:       "Server rejects unauthenticated access",
				Description: "A request without an Authorization header must be refused.",
				Fn:          rejectUnauthenticated,
			},
			{
				ID:          "accept-bearer",
				Title:       "Server accepts the bearer credential",
				Description: "The capability endpoint must be readable with the configured credential.",
				Fn:          acceptBearer,
			},
		},
	}
}

func rejectUnauthenticated(ctx context.Context, env *types.Env) error {
	if len(env.Supports) == 0 {
		return types.Skipf("no record types declared for this sequence")
	}
	recordType := env.Supports[0]
	base := env.Run.String(KeyBaseURL)

	env.Client.SetNoAuth()
	// Whatever happens below, later tests expect the bearer back in place.
	defer env.Client.SetBearer(env.Run.String(KeyBearer))

	resp, err := env.Client.Send(ctx, evidence.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/%s", base, recordType),
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return types.Failf("expected 401 or 403 without credentials, got %d", resp.StatusCode)
	}
	return nil
}

func acceptBearer(ctx context.Context, env *types.Env) error {
	base := env.Run.String(KeyBaseURL)

	resp, err := env.Client.Send(ctx, evidence.Request{
		Method: http.MethodGet,
		URL:    base + "/metadata",
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return types.Failf("expected 200 from capability endpoint, got %d", resp.StatusCode)
	}

	env.Run.Put(KeyCapabilities, string(resp.Body))
	return nil
}
