package eactivities

import (
	"context"
	"fmt"
	"log/slog"

	memberdomain "membership-portal/backend/internal/member/domain"
)

// MembershipAPI is the slice of the client the syncer needs.
type MembershipAPI interface {
	Members(ctx context.Context) ([]Member, error)
	Products(ctx context.Context) ([]Product, error)
	ProductSales(ctx context.Context, productID int64) ([]Sale, error)
}

// MemberWriter replaces the locally synced membership records.
type MemberWriter interface {
	ReplaceMembers(ctx context.Context, members []memberdomain.Member) error
	ReplaceTeamMembers(ctx context.Context, members []memberdomain.TeamMember) error
}

// Syncer pulls the membership and team-membership reports and replaces the
// local records with them.
type Syncer struct {
	api   MembershipAPI
	store MemberWriter
	log   *slog.Logger
}

func NewSyncer(api MembershipAPI, store MemberWriter, log *slog.Logger) *Syncer {
	if log == nil {
		log = slog.Default()
	}
	return &Syncer{api: api, store: store, log: log}
}

// Sync fetches both reports and swaps the local tables. Each table is
// replaced in its own transaction; a failure on one leaves the other's
// previous rows intact.
func (s *Syncer) Sync(ctx context.Context) error {
	members, err := s.api.Members(ctx)
	if err != nil {
		return fmt.Errorf("fetch members: %w", err)
	}

	products, err := s.api.Products(ctx)
	if err != nil {
		return fmt.Errorf("fetch products: %w", err)
	}
	teamProductID, err := TeamProductID(products)
	if err != nil {
		return err
	}
	sales, err := s.api.ProductSales(ctx, teamProductID)
	if err != nil {
		return fmt.Errorf("fetch team sales: %w", err)
	}

	if err := s.store.ReplaceMembers(ctx, membersToRecords(members)); err != nil {
		return fmt.Errorf("replace members: %w", err)
	}
	if err := s.store.ReplaceTeamMembers(ctx, salesToRecords(sales)); err != nil {
		return fmt.Errorf("replace team members: %w", err)
	}

	s.log.Info("membership sync complete",
		slog.Int("members", len(members)),
		slog.Int("team_members", len(sales)))
	return nil
}

func membersToRecords(members []Member) []memberdomain.Member {
	out := make([]memberdomain.Member, len(members))
	for i, m := range members {
		out[i] = memberdomain.Member{
			FirstName:  m.FirstName,
			Surname:    m.Surname,
			CID:        m.CID,
			Email:      m.Email,
			Login:      m.Login,
			OrderNo:    m.OrderNo,
			MemberType: m.MemberType,
		}
	}
	return out
}

func salesToRecords(sales []Sale) []memberdomain.TeamMember {
	out := make([]memberdomain.TeamMember, len(sales))
	for i, s := range sales {
		out[i] = memberdomain.TeamMember{
			FirstName: s.Customer.FirstName,
			Surname:   s.Customer.Surname,
			CID:       s.Customer.CID,
			Email:     s.Customer.Email,
			Login:     s.Customer.Login,
		}
	}
	return out
}
