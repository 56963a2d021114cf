package storage

import "github.com/UkralStul/content-service/internal/domain"

// PostRow - строка общей таблицы, соединенная с необязательными деталями всех подтипов.
// Заполнены только детали, реально существующие для данного id.
type PostRow struct {
	domain.PostCore
	Link  *domain.LinkDetail
	Photo *domain.PhotoDetail
	Quote *domain.QuoteDetail
	Text  *domain.TextDetail
	Video *domain.VideoDetail
}

func ConvertToLinkPost(row *PostRow) *domain.LinkPost {
	if row == nil {
		return nil
	}
	p := &domain.LinkPost{PostCore: row.PostCore.Clone()}
	if row.Link != nil {
		p.LinkDetail = *row.Link
	}
	return p
}

func ConvertToPhotoPost(row *PostRow) *domain.PhotoPost {
	if row == nil {
		return nil
	}
	p := &domain.PhotoPost{PostCore: row.PostCore.Clone()}
	if row.Photo != nil {
		p.PhotoDetail = *row.Photo
	}
	return p
}

func ConvertToQuotePost(row *PostRow) *domain.QuotePost {
	if row == nil {
		return nil
	}
	p := &domain.QuotePost{PostCore: row.PostCore.Clone()}
	if row.Quote != nil {
		p.QuoteDetail = *row.Quote
	}
	return p
}

func ConvertToTextPost(row *PostRow) *domain.TextPost {
	if row == nil {
		return nil
	}
	p := &domain.TextPost{PostCore: row.PostCore.Clone()}
	if row.Text != nil {
		p.TextDetail = *row.Text
	}
	return p
}

func ConvertToVideoPost(row *PostRow) *domain.VideoPost {
	if row == nil {
		return nil
	}
	p := &domain.VideoPost{PostCore: row.PostCore.Clone()}
	if row.Video != nil {
		p.VideoDetail = *row.Video
	}
	return p
}

// Attach записывает детали в строку по их конкретному типу.
func (r *PostRow) Attach(detail any) {
	switch d := detail.(type) {
	case domain.LinkDetail:
		r.Link = &d
	case domain.PhotoDetail:
		r.Photo = &d
	case domain.QuoteDetail:
		r.Quote = &d
	case domain.TextDetail:
		r.Text = &d
	case domain.VideoDetail:
		r.Video = &d
	}
}

// DetailOf извлекает запись деталей из типизированного поста.
func DetailOf(post domain.Post) any {
	switch p := post.(type) {
	case *domain.LinkPost:
		return p.LinkDetail
	case *domain.PhotoPost:
		return p.PhotoDetail
	case *domain.QuotePost:
		return p.QuoteDetail
	case *domain.TextPost:
		return p.TextDetail
	case *domain.VideoPost:
		return p.VideoDetail
	}
	return nil
}
