// Package credentials extracts a human-readable display name from a worker's
// bearer token for log correlation only (spec.md §6's TOKEN/TOKEN_2). It
// never validates a signature and is never consulted for authorization — that
// remains the external game-server connection's job.
package credentials

import (
	"github.com/golang-jwt/jwt/v5"
)

// DisplayName decodes token's claims and returns the "name" or "sub" claim,
// in that order of preference. A decode failure or missing claim is not an
// error — it returns a fallback string so logging degrades gracefully
// instead of blocking startup over a diagnostic nicety.
func DisplayName(token string) string {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "unknown"
	}

	if name, ok := claims["name"].(string); ok && name != "" {
		return name
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	return "unknown"
}

// AgentID extracts the token's "sub" claim, which the game server also uses
// as the agent's id in sensor reports — this lets cmd/agent know its own and
// its companion's id before ever subscribing to sensor events, rather than
// waiting on a first "you" event to find out (observer.New needs both ids
// up front to split self/companion/adversary in onAgentsSensing). Returns
// false if the token carries no usable "sub" claim.
func AgentID(token string) (string, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", false
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", false
	}
	return sub, true
}
