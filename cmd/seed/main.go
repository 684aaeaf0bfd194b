// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (shortcode "dev01") already exists.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	admindomain "membership-portal/backend/internal/admin/domain"
	adminrepo "membership-portal/backend/internal/admin/repository"
	"membership-portal/backend/internal/config"
	"membership-portal/backend/internal/db"
	memberdomain "membership-portal/backend/internal/member/domain"
	memberrepo "membership-portal/backend/internal/member/repository"
	"membership-portal/backend/internal/security"
	sessiondomain "membership-portal/backend/internal/session/domain"
	sessionrepo "membership-portal/backend/internal/session/repository"
	userdomain "membership-portal/backend/internal/user/domain"
	userrepo "membership-portal/backend/internal/user/repository"
)

const (
	devShortcode = "dev01"
	devPassword  = "password1"
	devAdminUser = "dev_admin"
	devAdminPass = "Password1"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(database)

	if existing, err := users.GetByShortcode(ctx, devShortcode); err != nil {
		log.Fatalf("check dev user: %v", err)
	} else if existing != nil {
		log.Println("seed: dev user already exists, nothing to do")
		return
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash: %v", err)
	}

	now := time.Now().UTC()
	devUser := &userdomain.User{
		ID:           uuid.New(),
		FirstName:    "Dev",
		Surname:      "User",
		Shortcode:    devShortcode,
		CID:          "00000001",
		PasswordHash: hash,
		Admin:        true,
		Tier:         userdomain.TierTeam,
		CreatedAt:    now,
	}
	if err := users.Create(ctx, devUser); err != nil {
		log.Fatalf("seed user: %v", err)
	}

	members := memberrepo.NewPostgresRepository(database)
	err = members.ReplaceMembers(ctx, []memberdomain.Member{
		{FirstName: "Dev", Surname: "User", CID: "00000001", Email: "dev@example.com", Login: devShortcode, OrderNo: 1, MemberType: "Full"},
	})
	if err != nil {
		log.Fatalf("seed members: %v", err)
	}
	err = members.ReplaceTeamMembers(ctx, []memberdomain.TeamMember{
		{FirstName: "Dev", Surname: "User", CID: "00000001", Email: "dev@example.com", Login: devShortcode},
	})
	if err != nil {
		log.Fatalf("seed team members: %v", err)
	}

	adminHash, err := hasher.Hash([]byte(devAdminPass))
	if err != nil {
		log.Fatalf("hash: %v", err)
	}
	admins := adminrepo.NewPostgresRepository(database)
	err = admins.Create(ctx, &admindomain.Admin{
		ID:           uuid.New(),
		Username:     devAdminUser,
		PasswordHash: adminHash,
		CreatedAt:    now,
	})
	if err != nil && !db.IsUniqueViolation(err) {
		log.Fatalf("seed admin: %v", err)
	}

	sessions := sessionrepo.NewPostgresRepository(database)
	start := now.Add(7 * 24 * time.Hour).Truncate(time.Hour)
	err = sessions.Create(ctx, &sessiondomain.Session{
		ID:          uuid.New(),
		Title:       "Weekly Training",
		Description: "Open training session",
		Location:    "Sports Hall",
		Tier:        userdomain.TierMember,
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		CreatedBy:   devUser.ID,
		CreatedAt:   now,
	})
	if err != nil {
		log.Fatalf("seed session: %v", err)
	}

	log.Printf("seed: created dev user %q (password %q) and admin %q", devShortcode, devPassword, devAdminUser)
}
