// Command devtoken mints a session token for local development, signed with
// SESSION_JWT_SECRET, so the gateway can be exercised without the identity provider.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/hobbyhub/gateway/config"
	"github.com/hobbyhub/gateway/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	email := flag.String("email", "demo@hobbyhub.local", "user email")
	name := flag.String("name", "Demo User", "display name")
	picture := flag.String("picture", "", "avatar URL")
	uid := flag.String("uid", "", "user id (random when empty)")
	flag.Parse()

	if *uid == "" {
		*uid = uuid.NewString()
	}
	v := helpers.NewSessionVerifier(cfg.SessionJWTSecret, cfg.SessionTokenTTL)
	token, exp, err := v.Sign(*uid, *email, *name, *picture)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}
	fmt.Printf("uid=%s email=%s expires=%s\n", *uid, *email, exp.Format("2006-01-02 15:04:05"))
	fmt.Println(token)
}
