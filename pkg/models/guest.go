package models

import (
	"strings"
	"time"
)

// RSVPStatus 宾客回复状态
type RSVPStatus string

const (
	RSVPPending   RSVPStatus = "pending"
	RSVPAttending RSVPStatus = "attending"
	RSVPDeclining RSVPStatus = "declining"
)

// MaxMessageLength 宾客留言最大长度（字符）
const MaxMessageLength = 1000

// NormalizeRSVPStatus coerces any stored or submitted value into a known status.
// Empty and unknown values become pending.
func NormalizeRSVPStatus(raw string) RSVPStatus {
	switch s := RSVPStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case RSVPAttending, RSVPDeclining, RSVPPending:
		return s
	default:
		return RSVPPending
	}
}

// IsSubmittable 客户端只能提交 attending / declining
func (s RSVPStatus) IsSubmittable() bool {
	return s == RSVPAttending || s == RSVPDeclining
}

// Guest 一份邀请（单人或情侣）
type Guest struct {
	ID                               int64      `json:"id" db:"id"`
	Token                            string     `json:"token" db:"token"`
	Name1                            string     `json:"name1" db:"name1"`
	Name2                            string     `json:"name2,omitempty" db:"name2"`
	Gender                           string     `json:"gender,omitempty" db:"gender"`
	Greeting                         string     `json:"greeting,omitempty" db:"greeting"`
	CoverMessage                     string     `json:"coverMessage,omitempty" db:"cover_message"`
	RSVPStatus                       RSVPStatus `json:"rsvpStatus" db:"rsvp_status"`
	AskPartnerAttendance             bool       `json:"askPartnerAttendance" db:"ask_partner_attendance"`
	PartnerAttending                 *bool      `json:"partnerAttending" db:"partner_attending"`
	ConfirmAttendingSoloTitle        string     `json:"confirmAttendingSoloTitle,omitempty" db:"confirm_attending_solo_title"`
	ConfirmAttendingSoloBody         string     `json:"confirmAttendingSoloBody,omitempty" db:"confirm_attending_solo_body"`
	ConfirmAttendingWithPartnerTitle string     `json:"confirmAttendingWithPartnerTitle,omitempty" db:"confirm_attending_with_partner_title"`
	ConfirmAttendingWithPartnerBody  string     `json:"confirmAttendingWithPartnerBody,omitempty" db:"confirm_attending_with_partner_body"`
	ConfirmDecliningTitle            string     `json:"confirmDecliningTitle,omitempty" db:"confirm_declining_title"`
	ConfirmDecliningBody             string     `json:"confirmDecliningBody,omitempty" db:"confirm_declining_body"`
	Message                          *string    `json:"message" db:"message"`
	RespondedAt                      *time.Time `json:"respondedAt" db:"responded_at"`
	WeddingID                        *int64     `json:"weddingId,omitempty" db:"wedding_id"`
	Wedding                          *Wedding   `json:"wedding,omitempty" db:"-"`
	CreatedAt                        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt                        time.Time  `json:"updatedAt" db:"updated_at"`
}

// DisplayName returns "name1 & name2" for couples.
func (g *Guest) DisplayName() string {
	if g.Name2 != "" {
		return g.Name1 + " & " + g.Name2
	}
	return g.Name1
}

// GuestInput 管理端创建/更新宾客的请求体
// Status is the legacy alias of RSVPStatus and is only read when RSVPStatus is absent.
type GuestInput struct {
	Name1                            *string `json:"name1"`
	Name2                            *string `json:"name2"`
	Gender                           *string `json:"gender"`
	Greeting                         *string `json:"greeting"`
	CoverMessage                     *string `json:"coverMessage"`
	RSVPStatus                       *string `json:"rsvpStatus"`
	Status                           *string `json:"status"`
	AskPartnerAttendance             *bool   `json:"askPartnerAttendance"`
	ConfirmAttendingSoloTitle        *string `json:"confirmAttendingSoloTitle"`
	ConfirmAttendingSoloBody         *string `json:"confirmAttendingSoloBody"`
	ConfirmAttendingWithPartnerTitle *string `json:"confirmAttendingWithPartnerTitle"`
	ConfirmAttendingWithPartnerBody  *string `json:"confirmAttendingWithPartnerBody"`
	ConfirmDecliningTitle            *string `json:"confirmDecliningTitle"`
	ConfirmDecliningBody             *string `json:"confirmDecliningBody"`
	WeddingID                        *int64  `json:"weddingId"`
}

// Apply copies the provided fields onto g. Token and response fields are never touched.
func (in *GuestInput) Apply(g *Guest) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&g.Name1, in.Name1)
	setString(&g.Name2, in.Name2)
	setString(&g.Gender, in.Gender)
	setString(&g.Greeting, in.Greeting)
	setString(&g.CoverMessage, in.CoverMessage)
	setString(&g.ConfirmAttendingSoloTitle, in.ConfirmAttendingSoloTitle)
	setString(&g.ConfirmAttendingSoloBody, in.ConfirmAttendingSoloBody)
	setString(&g.ConfirmAttendingWithPartnerTitle, in.ConfirmAttendingWithPartnerTitle)
	setString(&g.ConfirmAttendingWithPartnerBody, in.ConfirmAttendingWithPartnerBody)
	setString(&g.ConfirmDecliningTitle, in.ConfirmDecliningTitle)
	setString(&g.ConfirmDecliningBody, in.ConfirmDecliningBody)

	if in.AskPartnerAttendance != nil {
		g.AskPartnerAttendance = *in.AskPartnerAttendance
	}
	if in.WeddingID != nil {
		id := *in.WeddingID
		g.WeddingID = &id
	}

	status := in.RSVPStatus
	if status == nil {
		status = in.Status
	}
	if status != nil {
		g.RSVPStatus = NormalizeRSVPStatus(*status)
	}
	if g.RSVPStatus == "" {
		g.RSVPStatus = RSVPPending
	}
}

// WeddingSummary 邀请页所需的婚礼信息
type WeddingSummary struct {
	EventName    string `json:"eventName"`
	Date         string `json:"date"`
	CoverMessage string `json:"coverMessage"`
}

// GuestProjection is the only view of a guest reachable from a token.
type GuestProjection struct {
	ID                               int64           `json:"id"`
	Name1                            string          `json:"name1"`
	Name2                            *string         `json:"name2"`
	Gender                           *string         `json:"gender"`
	Greeting                         *string         `json:"greeting"`
	CoverMessage                     *string         `json:"coverMessage"`
	Status                           RSVPStatus      `json:"status"`
	AskPartnerAttendance             bool            `json:"askPartnerAttendance"`
	PartnerAttending                 *bool           `json:"partnerAttending"`
	ConfirmAttendingSoloTitle        *string         `json:"confirmAttendingSoloTitle"`
	ConfirmAttendingSoloBody         *string         `json:"confirmAttendingSoloBody"`
	ConfirmAttendingWithPartnerTitle *string         `json:"confirmAttendingWithPartnerTitle"`
	ConfirmAttendingWithPartnerBody  *string         `json:"confirmAttendingWithPartnerBody"`
	ConfirmDecliningTitle            *string         `json:"confirmDecliningTitle"`
	ConfirmDecliningBody             *string         `json:"confirmDecliningBody"`
	Message                          *string         `json:"message"`
	RespondedAt                      *time.Time      `json:"respondedAt"`
	Wedding                          *WeddingSummary `json:"wedding"`
}

// Project builds the public projection. Empty optional text becomes null.
func (g *Guest) Project() GuestProjection {
	p := GuestProjection{
		ID:                               g.ID,
		Name1:                            g.Name1,
		Name2:                            nullable(g.Name2),
		Gender:                           nullable(g.Gender),
		Greeting:                         nullable(g.Greeting),
		CoverMessage:                     nullable(g.CoverMessage),
		Status:                           NormalizeRSVPStatus(string(g.RSVPStatus)),
		AskPartnerAttendance:             g.AskPartnerAttendance,
		PartnerAttending:                 g.PartnerAttending,
		ConfirmAttendingSoloTitle:        nullable(g.ConfirmAttendingSoloTitle),
		ConfirmAttendingSoloBody:         nullable(g.ConfirmAttendingSoloBody),
		ConfirmAttendingWithPartnerTitle: nullable(g.ConfirmAttendingWithPartnerTitle),
		ConfirmAttendingWithPartnerBody:  nullable(g.ConfirmAttendingWithPartnerBody),
		ConfirmDecliningTitle:            nullable(g.ConfirmDecliningTitle),
		ConfirmDecliningBody:             nullable(g.ConfirmDecliningBody),
		Message:                          g.Message,
		RespondedAt:                      g.RespondedAt,
	}
	if g.Wedding != nil {
		p.Wedding = &WeddingSummary{
			EventName:    g.Wedding.EventName,
			Date:         g.Wedding.Date,
			CoverMessage: g.Wedding.CoverMessage,
		}
	}
	return p
}

// DisplayName mirrors Guest.DisplayName for projections read back over HTTP.
func (p *GuestProjection) DisplayName() string {
	if p.Name2 != nil && *p.Name2 != "" {
		return p.Name1 + " & " + *p.Name2
	}
	return p.Name1
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// RSVPResult RSVP 提交后的返回结构
type RSVPResult struct {
	ID     int64      `json:"id"`
	Status RSVPStatus `json:"status"`
}
