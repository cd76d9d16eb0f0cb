package models

import "time"

// AvatarRecord is the singleton avatar slot. At most one row exists.
type AvatarRecord struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	MIMEType  string
	Payload   []byte
	CreatedAt time.Time
}

func (AvatarRecord) TableName() string {
	return "avatar"
}

type WardrobeRecord struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"index"`
	MIMEType  string
	Payload   []byte
	Enriching bool `gorm:"default:false"`
	// metadata columns stay NULL until enrichment completes
	Category *string
	Color    *string
	Season   *string
	Style    *string
	Position int
	AddedAt  time.Time
}

func (WardrobeRecord) TableName() string {
	return "wardrobe"
}

func AvatarRecordFrom(ref ImageRef) AvatarRecord {
	return AvatarRecord{ID: ref.ID, Name: ref.Name, MIMEType: ref.MIMEType, Payload: ref.Payload}
}

func (r AvatarRecord) ImageRef() ImageRef {
	return ImageRef{ID: r.ID, Name: r.Name, MIMEType: r.MIMEType, Payload: r.Payload}
}

func WardrobeRecordFrom(item WardrobeItem, position int) WardrobeRecord {
	record := WardrobeRecord{
		ID:        item.ID,
		Name:      item.Name,
		MIMEType:  item.MIMEType,
		Payload:   item.Payload,
		Enriching: item.Enriching,
		Position:  position,
		AddedAt:   item.AddedAt,
	}
	if item.Metadata != nil {
		category := string(item.Metadata.Category)
		season := string(item.Metadata.Season)
		style := string(item.Metadata.Style)
		color := item.Metadata.Color
		record.Category = &category
		record.Color = &color
		record.Season = &season
		record.Style = &style
	}
	return record
}

func (r WardrobeRecord) WardrobeItem() WardrobeItem {
	item := WardrobeItem{
		ImageRef:  ImageRef{ID: r.ID, Name: r.Name, MIMEType: r.MIMEType, Payload: r.Payload},
		Enriching: r.Enriching,
		AddedAt:   r.AddedAt,
	}
	if r.Category != nil {
		metadata := DefaultMetadata()
		metadata.Category = Category(*r.Category)
		if r.Color != nil {
			metadata.Color = *r.Color
		}
		if r.Season != nil {
			metadata.Season = Season(*r.Season)
		}
		if r.Style != nil {
			metadata.Style = Style(*r.Style)
		}
		item.Metadata = &metadata
	}
	return item
}
