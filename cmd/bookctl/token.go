package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nekogravitycat/meeting-scheduler/internal/auth"
)

// TokenCmd mints a host token signed with the server's shared secret.
type TokenCmd struct {
	Subject string        `arg:"" name:"hostId" help:"Host ID placed in the sub claim"`
	Email   string        `name:"email" help:"Email claim"`
	Secret  string        `name:"secret" help:"Signing secret of the server" required:"" env:"JWT_SECRET"`
	Issuer  string        `name:"issuer" help:"Issuer claim" env:"JWT_ISSUER"`
	TTL     time.Duration `name:"ttl" help:"Token lifetime" default:"15m" env:"JWT_ACCESS_TOKEN_TTL"`
}

func (c *TokenCmd) mint() (string, error) {
	if c.TTL <= 0 {
		return "", fmt.Errorf("ttl must be positive")
	}
	opts := []auth.JWTOption{auth.WithTTL(c.TTL)}
	if c.Issuer != "" {
		opts = append(opts, auth.WithIssuer(c.Issuer))
	}
	return auth.NewJWTManager(c.Secret, opts...).GenerateAccessToken(c.Subject, c.Email)
}

func (c *TokenCmd) Run(g *Globals, ctx context.Context) error {
	token, err := c.mint()
	if err != nil {
		return err
	}
	if g.JSON {
		return printJSON(map[string]string{"token": token})
	}
	fmt.Println(token)
	return nil
}
