package business

import (
	"math"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/entities"
)

// resolveSender picks the author of a message: attached sender object first,
// then the raw from-peer, otherwise anonymous.
func resolveSender(msg domain.Message) (*int64, entities.SenderType) {
	if s := msg.Sender; s != nil {
		id := s.ID
		switch {
		case s.Channel:
			return &id, entities.SenderChannel
		case s.Bot:
			return &id, entities.SenderBot
		default:
			return &id, entities.SenderUser
		}
	}

	if p := msg.From; p != nil {
		id := p.ID
		switch p.Kind {
		case domain.PeerUser:
			return &id, entities.SenderUser
		case domain.PeerChannel:
			return &id, entities.SenderChannel
		}
	}

	return nil, entities.SenderAnonymous
}

// classifyMedia maps an attachment to its stored metadata. It returns nil for
// messages without media and for attachment kinds that are not stored.
func classifyMedia(dialogID int64, messageID int, media domain.Media) *entities.MediaRecord {
	rec := &entities.MediaRecord{DialogID: dialogID, MessageID: messageID}

	switch m := media.(type) {
	case domain.PhotoMedia:
		rec.MediaType = entities.MediaPhoto
		rec.FileReference = m.FileReference
		if size, ok := largestPhotoSize(m.Sizes); ok {
			rec.ThumbWidth = intPtr(size.Width)
			rec.ThumbHeight = intPtr(size.Height)
			rec.SizeBytes = int64Ptr(int64(size.Bytes))
		}
	case domain.DocumentMedia:
		rec.MediaType = documentType(m.Attributes)
		rec.FileReference = m.FileReference
		rec.SizeBytes = int64Ptr(m.Size)
		if m.MimeType != "" {
			rec.MimeType = strPtr(m.MimeType)
		}
		for _, attr := range m.Attributes {
			switch a := attr.(type) {
			case domain.FilenameAttribute:
				if rec.FileName == nil && a.FileName != "" {
					rec.FileName = strPtr(a.FileName)
				}
			case domain.VideoAttribute:
				if rec.ThumbWidth == nil {
					rec.ThumbWidth, rec.ThumbHeight = intPtr(a.Width), intPtr(a.Height)
				}
			case domain.ImageSizeAttribute:
				if rec.ThumbWidth == nil {
					rec.ThumbWidth, rec.ThumbHeight = intPtr(a.Width), intPtr(a.Height)
				}
			}
		}
		if d, ok := documentDuration(m.Attributes); ok {
			rec.DurationSeconds = intPtr(d)
		}
	case domain.WebPageMedia:
		rec.MediaType = entities.MediaWebPage
	case domain.PollMedia:
		rec.MediaType = entities.MediaPoll
	default:
		return nil
	}

	return rec
}

// documentType applies the attribute precedence video, audio/voice, sticker, animated.
// A document with none of them is a plain document.
func documentType(attrs []domain.DocumentAttribute) entities.MediaType {
	if _, ok := findAttribute[domain.VideoAttribute](attrs); ok {
		return entities.MediaVideo
	}
	if a, ok := findAttribute[domain.AudioAttribute](attrs); ok {
		if a.Voice {
			return entities.MediaVoice
		}
		return entities.MediaAudio
	}
	if _, ok := findAttribute[domain.StickerAttribute](attrs); ok {
		return entities.MediaSticker
	}
	if _, ok := findAttribute[domain.AnimatedAttribute](attrs); ok {
		return entities.MediaGIF
	}
	return entities.MediaDocument
}

// documentDuration returns the duration of the first audio or video attribute in whole seconds
func documentDuration(attrs []domain.DocumentAttribute) (int, bool) {
	for _, attr := range attrs {
		switch a := attr.(type) {
		case domain.VideoAttribute:
			return int(math.Round(a.Duration)), true
		case domain.AudioAttribute:
			return a.Duration, true
		}
	}
	return 0, false
}

func findAttribute[T domain.DocumentAttribute](attrs []domain.DocumentAttribute) (T, bool) {
	for _, attr := range attrs {
		if a, ok := attr.(T); ok {
			return a, true
		}
	}
	var zero T
	return zero, false
}

// largestPhotoSize picks the variant with the largest area, ties broken by byte size
func largestPhotoSize(sizes []domain.PhotoSize) (domain.PhotoSize, bool) {
	if len(sizes) == 0 {
		return domain.PhotoSize{}, false
	}

	best := sizes[0]
	for _, s := range sizes[1:] {
		area, bestArea := s.Width*s.Height, best.Width*best.Height
		if area > bestArea || (area == bestArea && s.Bytes > best.Bytes) {
			best = s
		}
	}
	return best, true
}

// normalize derives the stored records for a matched message
func normalize(msg domain.Message, dialogID int64) (*entities.MessageRecord, *entities.MediaRecord) {
	senderID, senderType := resolveSender(msg)

	rec := &entities.MessageRecord{
		DialogID:         dialogID,
		MessageID:        msg.ID,
		SenderID:         senderID,
		SenderType:       senderType,
		Date:             msg.Date.UTC(),
		Views:            msg.Views,
		ReplyToMessageID: msg.ReplyToMessageID,
	}
	if msg.Text != "" {
		rec.Text = strPtr(msg.Text)
	}
	if fwd := msg.Forward; fwd != nil && fwd.From != nil {
		rec.ForwardFromID = int64Ptr(fwd.From.ID)
	}

	media := classifyMedia(dialogID, msg.ID, msg.Media)
	if media != nil {
		mt := media.MediaType
		rec.MediaType = &mt
		rec.MediaSize = media.SizeBytes
	}

	return rec, media
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func int64Ptr(i int64) *int64 { return &i }
