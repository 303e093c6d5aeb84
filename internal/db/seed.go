package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"resonate/internal/core/domain"
)

// Seed inserts demo marketplace data: an admin, a funded artist with
// campaigns in each pre-settlement state, and creators with submissions
// against the active campaign.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	admin := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	artist := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	users := []struct {
		id      uuid.UUID
		name    string
		role    domain.Role
		balance int64
	}{
		{admin, "Marketplace Admin", domain.RoleAdmin, 0},
		{artist, "Nova Records", domain.RoleArtist, 2_000_000},
	}
	creators := make([]uuid.UUID, 0, 3)
	for i := 1; i <= 3; i++ {
		id := uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0001-%012d", i))
		creators = append(creators, id)
		users = append(users, struct {
			id      uuid.UUID
			name    string
			role    domain.Role
			balance int64
		}{id, fmt.Sprintf("Creator %d", i), domain.RoleCreator, 0})
	}
	for _, u := range users {
		_, err := pool.Exec(ctx, `INSERT INTO users (id, display_name, role, balance)
VALUES ($1,$2,$3,$4) ON CONFLICT DO NOTHING`, u.id, u.name, u.role, u.balance)
		if err != nil {
			return err
		}
	}

	pending := uuid.MustParse("00000000-0000-0000-0002-000000000001")
	active := uuid.MustParse("00000000-0000-0000-0002-000000000002")
	campaigns := []struct {
		id     uuid.UUID
		title  string
		status domain.CampaignStatus
		budget int64
	}{
		{pending, "Single Launch Promo", domain.CampaignPendingApproval, 500_000},
		{active, "Album Release Blitz", domain.CampaignActive, 1_000_000},
	}
	for _, c := range campaigns {
		_, err := pool.Exec(ctx, `INSERT INTO campaigns (id, artist_id, title, status, total_budget)
VALUES ($1,$2,$3,$4,$5) ON CONFLICT DO NOTHING`, c.id, artist, c.title, c.status, c.budget)
		if err != nil {
			return err
		}
	}

	// The active campaign's budget is already held from the artist.
	_, err := pool.Exec(ctx, `INSERT INTO transactions (id, user_id, amount, type, status, description)
VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT DO NOTHING`,
		uuid.MustParse("00000000-0000-0000-0003-000000000001"), artist, int64(-1_000_000),
		domain.TransactionBudgetHold, domain.TransactionCompleted,
		`Budget hold for campaign "Album Release Blitz"`)
	if err != nil {
		return err
	}

	for i, creator := range creators {
		subID := uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0004-%012d", i+1))
		_, err := pool.Exec(ctx, `INSERT INTO submissions (id, campaign_id, creator_id, content_url, engagement_score)
VALUES ($1,$2,$3,$4,$5) ON CONFLICT DO NOTHING`,
			subID, active, creator, fmt.Sprintf("https://clips.example.com/%s", subID), int64((i+1)*1000))
		if err != nil {
			return err
		}
	}
	return nil
}
