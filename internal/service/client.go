package service

import (
	"errors"
	"strings"

	"github.com/dogmatus07/lynkevo-insights/internal/model"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// ClientListItem is a client row annotated with report and membership counts
type ClientListItem struct {
	model.Client
	ReportsCount int64 `json:"reports_count"`
	UsersCount   int64 `json:"users_count"`
}

// ClientStats summarizes the client base for the staff listing
type ClientStats struct {
	TotalClients    int64 `json:"total_clients"`
	ActiveClients   int64 `json:"active_clients"`
	InactiveClients int64 `json:"inactive_clients"`
	TotalReports    int64 `json:"total_reports"`
}

// ClientMetrics holds the derived numbers shown on the client detail page
type ClientMetrics struct {
	TotalReports         int64   `json:"total_reports"`
	TotalTicketsReceived int64   `json:"total_tickets_received"`
	TotalTicketsResolved int64   `json:"total_tickets_resolved"`
	ResolutionRate       float64 `json:"resolution_rate"`
}

// ClientDetailResult bundles everything the client detail view needs
type ClientDetailResult struct {
	Client        model.Client       `json:"client"`
	RecentReports []model.KPIReport  `json:"recent_reports"`
	Memberships   []model.Membership `json:"memberships"`
	Metrics       ClientMetrics      `json:"metrics"`
}

const clientPageSize = 12

// ListClients returns one page of clients, newest first, optionally filtered
// by a case-insensitive substring match on name or contact email. Each row
// carries its report and membership counts.
func ListClients(db *gorm.DB, search string, page int) ([]ClientListItem, ClientStats, int64, error) {
	if page <= 0 {
		page = 1
	}

	query := db.Model(&model.Client{}).
		Select("clients.*, " +
			"(SELECT COUNT(*) FROM kpi_reports WHERE kpi_reports.client_id = clients.id) AS reports_count, " +
			"(SELECT COUNT(*) FROM memberships WHERE memberships.client_id = clients.id) AS users_count")

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(clients.name) LIKE ? OR LOWER(clients.contact_email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, ClientStats{}, 0, err
	}

	var items []ClientListItem
	err := query.
		Order("clients.created_at desc").
		Limit(clientPageSize).
		Offset((page - 1) * clientPageSize).
		Find(&items).Error
	if err != nil {
		return nil, ClientStats{}, 0, err
	}

	stats, err := clientStats(db)
	if err != nil {
		return nil, ClientStats{}, 0, err
	}

	return items, stats, total, nil
}

func clientStats(db *gorm.DB) (ClientStats, error) {
	var stats ClientStats
	if err := db.Model(&model.Client{}).Count(&stats.TotalClients).Error; err != nil {
		return stats, err
	}
	err := db.Model(&model.Client{}).
		Where("id IN (SELECT DISTINCT client_id FROM kpi_reports)").
		Count(&stats.ActiveClients).Error
	if err != nil {
		return stats, err
	}
	if err := db.Model(&model.KPIReport{}).Count(&stats.TotalReports).Error; err != nil {
		return stats, err
	}
	stats.InactiveClients = stats.TotalClients - stats.ActiveClients
	return stats, nil
}

// CreateClient creates a client and derives its slug from the name. The slug
// is set exactly once here; updates never touch it.
func CreateClient(db *gorm.DB, name, contactEmail string) (*model.Client, error) {
	fields := map[string]string{}
	if strings.TrimSpace(name) == "" {
		fields["name"] = "name is required"
	}
	if contactEmail != "" && !strings.Contains(contactEmail, "@") {
		fields["contact_email"] = "enter a valid email address"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	clientSlug := slug.Make(name)
	var count int64
	if err := db.Model(&model.Client{}).Where("slug = ?", clientSlug).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, NewValidationError("name", "a client with an equivalent name already exists")
	}

	client := model.Client{
		Name:         strings.TrimSpace(name),
		Slug:         clientSlug,
		ContactEmail: contactEmail,
	}
	if err := db.Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// GetClientDetail returns a client with its five most recent reports, its
// memberships and the derived metrics block.
func GetClientDetail(db *gorm.DB, clientID uint) (*ClientDetailResult, error) {
	var client model.Client
	if err := db.First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var recent []model.KPIReport
	err := db.Where("client_id = ?", client.ID).
		Order("created_at desc").
		Limit(5).
		Find(&recent).Error
	if err != nil {
		return nil, err
	}

	var memberships []model.Membership
	err = db.Preload("User").
		Where("client_id = ?", client.ID).
		Order("id desc").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	var metrics ClientMetrics
	err = db.Model(&model.KPIReport{}).
		Where("client_id = ?", client.ID).
		Count(&metrics.TotalReports).Error
	if err != nil {
		return nil, err
	}

	type sums struct {
		Received int64
		Resolved int64
	}
	var s sums
	err = db.Model(&model.KPIReport{}).
		Select("COALESCE(SUM(tickets_received), 0) AS received, COALESCE(SUM(tickets_resolved), 0) AS resolved").
		Where("client_id = ?", client.ID).
		Scan(&s).Error
	if err != nil {
		return nil, err
	}
	metrics.TotalTicketsReceived = s.Received
	metrics.TotalTicketsResolved = s.Resolved
	metrics.ResolutionRate = ResolutionRate(int(s.Resolved), int(s.Received))

	return &ClientDetailResult{
		Client:        client,
		RecentReports: recent,
		Memberships:   memberships,
		Metrics:       metrics,
	}, nil
}

// UpdateClient updates a client's name and contact email. The slug stays as
// it was derived on creation.
func UpdateClient(db *gorm.DB, clientID uint, name, contactEmail string) (*model.Client, error) {
	var client model.Client
	if err := db.First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	fields := map[string]string{}
	if strings.TrimSpace(name) == "" {
		fields["name"] = "name is required"
	}
	if contactEmail != "" && !strings.Contains(contactEmail, "@") {
		fields["contact_email"] = "enter a valid email address"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	client.Name = strings.TrimSpace(name)
	client.ContactEmail = contactEmail
	if err := db.Save(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// DeleteClient removes a client and everything it owns: memberships, KPI
// reports and their category/highlight children. The delete runs in one
// transaction so a failure leaves no partial state. It is irreversible.
func DeleteClient(db *gorm.DB, clientID uint) error {
	var client model.Client
	if err := db.First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var reportIDs []uint
		err := tx.Model(&model.KPIReport{}).
			Where("client_id = ?", client.ID).
			Pluck("id", &reportIDs).Error
		if err != nil {
			return err
		}

		if len(reportIDs) > 0 {
			if err := tx.Where("report_id IN ?", reportIDs).Delete(&model.TicketCategory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("report_id IN ?", reportIDs).Delete(&model.WeeklyHighlight{}).Error; err != nil {
				return err
			}
			if err := tx.Where("client_id = ?", client.ID).Delete(&model.KPIReport{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("client_id = ?", client.ID).Delete(&model.Membership{}).Error; err != nil {
			return err
		}

		return tx.Delete(&client).Error
	})
}
