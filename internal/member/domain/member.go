// Package domain holds the synced membership records. Rows are replaced
// wholesale by the sync worker and only read elsewhere.
package domain

// Member is one row from the union's membership report.
type Member struct {
	FirstName  string `db:"first_name" json:"first_name"`
	Surname    string `db:"surname" json:"surname"`
	CID        string `db:"cid" json:"cid"`
	Email      string `db:"email" json:"email"`
	Login      string `db:"login" json:"login"`
	OrderNo    int32  `db:"order_no" json:"order_no"`
	MemberType string `db:"member_type" json:"member_type"`
}

// TeamMember is one purchaser of the team membership product.
type TeamMember struct {
	FirstName string `db:"first_name" json:"first_name"`
	Surname   string `db:"surname" json:"surname"`
	CID       string `db:"cid" json:"cid"`
	Email     string `db:"email" json:"email"`
	Login     string `db:"login" json:"login"`
}
