package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Lead ответы одной анкеты (заполняется по ходу диалога)
type Lead struct {
	LotID        string
	Name         string
	PropertyType string
	District     string
	Budget       string
	Bedrooms     string
	CheckIn      string
	CheckOut     string
	Notes        string
	Contact      string
	Transfer     string

	// DistrictSelection существует только пока пользователь на вопросе о районе
	DistrictSelection DistrictSet
}

// Reset очищает анкету, сохраняя только номер лота
func (l *Lead) Reset() {
	*l = Lead{LotID: l.LotID}
}

// UserIdentity кто прислал сообщение
type UserIdentity struct {
	ChatID   int64
	UserID   int64
	Username string
}

// Mention @username, если есть, иначе числовой ID
func (u UserIdentity) Mention() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	return "(ID: " + strconv.FormatInt(u.UserID, 10) + ")"
}

// TimestampLayout формат created_at в таблице и уведомлениях (UTC)
const TimestampLayout = "2006-01-02 15:04:05"

// SheetColumns контракт колонок таблицы заявок, порядок важен
var SheetColumns = []string{
	"created_at", "chat_id", "username",
	"lots",
	"name",
	"location", "bedrooms", "budget",
	"checkin", "checkout", "type", "notes",
	"contact", "transfer",
}

// LeadRow строка для хранилища заявок
type LeadRow struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ChatID    int64     `json:"chat_id"`
	Username  string    `json:"username"`
	Lot       string    `json:"lots"`
	Name      string    `json:"name"`
	District  string    `json:"location"`
	Bedrooms  string    `json:"bedrooms"`
	Budget    string    `json:"budget"`
	CheckIn   string    `json:"checkin"`
	CheckOut  string    `json:"checkout"`
	Type      string    `json:"type"`
	Notes     string    `json:"notes"`
	Contact   string    `json:"contact"`
	Transfer  string    `json:"transfer"`
}

// NewLeadRow собирает строку из заполненной анкеты
func NewLeadRow(lead Lead, user UserIdentity, createdAt time.Time) LeadRow {
	return LeadRow{
		ID:        uuid.New().String(),
		CreatedAt: createdAt.UTC(),
		ChatID:    user.ChatID,
		Username:  user.Username,
		Lot:       lead.LotID,
		Name:      lead.Name,
		District:  lead.District,
		Bedrooms:  lead.Bedrooms,
		Budget:    lead.Budget,
		CheckIn:   lead.CheckIn,
		CheckOut:  lead.CheckOut,
		Type:      lead.PropertyType,
		Notes:     lead.Notes,
		Contact:   lead.Contact,
		Transfer:  lead.Transfer,
	}
}

// Values возвращает значения в порядке SheetColumns
func (r LeadRow) Values() []string {
	return []string{
		r.CreatedAt.UTC().Format(TimestampLayout),
		strconv.FormatInt(r.ChatID, 10),
		r.Username,
		r.Lot,
		r.Name,
		r.District,
		r.Bedrooms,
		r.Budget,
		r.CheckIn,
		r.CheckOut,
		r.Type,
		r.Notes,
		r.Contact,
		r.Transfer,
	}
}
