package telegram

import (
	"time"

	"github.com/gotd/td/tg"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
)

// entityIndex holds the users and chats delivered next to a batch of messages
// or dialogs
type entityIndex struct {
	users    map[int64]*tg.User
	chats    map[int64]*tg.Chat
	channels map[int64]*tg.Channel
}

func newEntityIndex(users []tg.UserClass, chats []tg.ChatClass) entityIndex {
	idx := entityIndex{
		users:    make(map[int64]*tg.User, len(users)),
		chats:    make(map[int64]*tg.Chat),
		channels: make(map[int64]*tg.Channel),
	}

	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			idx.users[user.ID] = user
		}
	}
	for _, c := range chats {
		switch chat := c.(type) {
		case *tg.Chat:
			idx.chats[chat.ID] = chat
		case *tg.Channel:
			idx.channels[chat.ID] = chat
		}
	}

	return idx
}

// entities converts every indexed user and chat to a domain entity
func (idx entityIndex) entities() []domain.Entity {
	out := make([]domain.Entity, 0, len(idx.users)+len(idx.chats)+len(idx.channels))
	for _, u := range idx.users {
		out = append(out, userEntity(u))
	}
	for _, c := range idx.chats {
		out = append(out, chatEntity(c))
	}
	for _, c := range idx.channels {
		out = append(out, channelEntity(c))
	}
	return out
}

func userEntity(u *tg.User) domain.Entity {
	title := u.FirstName
	if u.LastName != "" {
		if title != "" {
			title += " "
		}
		title += u.LastName
	}

	return domain.Entity{
		Peer:       domain.Peer{Kind: domain.PeerUser, ID: u.ID},
		AccessHash: u.AccessHash,
		Title:      title,
		Username:   u.Username,
	}
}

func chatEntity(c *tg.Chat) domain.Entity {
	return domain.Entity{
		Peer:  domain.Peer{Kind: domain.PeerChat, ID: c.ID},
		Title: c.Title,
	}
}

func channelEntity(c *tg.Channel) domain.Entity {
	return domain.Entity{
		Peer:       domain.Peer{Kind: domain.PeerChannel, ID: c.ID},
		AccessHash: c.AccessHash,
		Title:      c.Title,
		Username:   c.Username,
	}
}

func decodePeer(p tg.PeerClass) *domain.Peer {
	switch peer := p.(type) {
	case *tg.PeerUser:
		return &domain.Peer{Kind: domain.PeerUser, ID: peer.UserID}
	case *tg.PeerChat:
		return &domain.Peer{Kind: domain.PeerChat, ID: peer.ChatID}
	case *tg.PeerChannel:
		return &domain.Peer{Kind: domain.PeerChannel, ID: peer.ChannelID}
	default:
		return nil
	}
}

// decodeMessage converts a regular message. Service messages and empty
// placeholders yield false.
func decodeMessage(m tg.MessageClass, idx entityIndex) (domain.Message, bool) {
	msg, ok := m.(*tg.Message)
	if !ok {
		return domain.Message{}, false
	}

	out := domain.Message{
		ID:   msg.ID,
		Date: time.Unix(int64(msg.Date), 0).UTC(),
		Text: msg.Message,
	}

	if dialog := decodePeer(msg.PeerID); dialog != nil {
		out.Dialog = *dialog
	}
	if views, ok := msg.GetViews(); ok {
		out.Views = &views
	}
	if reply, ok := msg.GetReplyTo(); ok {
		if header, ok := reply.(*tg.MessageReplyHeader); ok {
			if id, ok := header.GetReplyToMsgID(); ok {
				out.ReplyToMessageID = &id
			}
		}
	}
	if from, ok := msg.GetFromID(); ok {
		out.From = decodePeer(from)
	}
	if fwd, ok := msg.GetFwdFrom(); ok {
		header := &domain.ForwardHeader{}
		if from, ok := fwd.GetFromID(); ok {
			header.From = decodePeer(from)
		}
		if post, ok := fwd.GetChannelPost(); ok {
			header.ChannelPost = post
		}
		out.Forward = header
	}

	out.Sender = decodeSender(msg, out.From, out.Dialog, idx)

	if media, ok := msg.GetMedia(); ok {
		out.Media = decodeMedia(media)
	}

	return out, true
}

// decodeSender returns the author object of msg when it was delivered with
// the batch. Channel posts without a from-peer are authored by the channel.
func decodeSender(msg *tg.Message, from *domain.Peer, dialog domain.Peer, idx entityIndex) *domain.Sender {
	author := from
	if author == nil && msg.Post && dialog.Kind == domain.PeerChannel {
		author = &dialog
	}
	if author == nil {
		return nil
	}

	switch author.Kind {
	case domain.PeerUser:
		if u, ok := idx.users[author.ID]; ok {
			return &domain.Sender{ID: u.ID, Bot: u.Bot}
		}
	case domain.PeerChannel:
		if c, ok := idx.channels[author.ID]; ok {
			return &domain.Sender{ID: c.ID, Channel: true}
		}
	}

	return nil
}

func decodeMedia(m tg.MessageMediaClass) domain.Media {
	switch media := m.(type) {
	case *tg.MessageMediaPhoto:
		photo, ok := media.GetPhoto()
		if !ok {
			return domain.UnsupportedMedia{Kind: media.TypeName()}
		}
		p, ok := photo.(*tg.Photo)
		if !ok {
			return domain.UnsupportedMedia{Kind: photo.TypeName()}
		}
		return domain.PhotoMedia{
			ID:            p.ID,
			FileReference: p.FileReference,
			Sizes:         decodePhotoSizes(p.Sizes),
		}

	case *tg.MessageMediaDocument:
		document, ok := media.GetDocument()
		if !ok {
			return domain.UnsupportedMedia{Kind: media.TypeName()}
		}
		d, ok := document.(*tg.Document)
		if !ok {
			return domain.UnsupportedMedia{Kind: document.TypeName()}
		}
		return domain.DocumentMedia{
			ID:            d.ID,
			MimeType:      d.MimeType,
			Size:          d.Size,
			FileReference: d.FileReference,
			Attributes:    decodeAttributes(d.Attributes),
		}

	case *tg.MessageMediaWebPage:
		if page, ok := media.Webpage.(*tg.WebPage); ok {
			return domain.WebPageMedia{URL: page.URL}
		}
		return domain.WebPageMedia{}

	case *tg.MessageMediaPoll:
		return domain.PollMedia{Question: media.Poll.Question.Text}

	default:
		return domain.UnsupportedMedia{Kind: m.TypeName()}
	}
}

func decodePhotoSizes(sizes []tg.PhotoSizeClass) []domain.PhotoSize {
	out := make([]domain.PhotoSize, 0, len(sizes))
	for _, s := range sizes {
		switch size := s.(type) {
		case *tg.PhotoSize:
			out = append(out, domain.PhotoSize{Type: size.Type, Width: size.W, Height: size.H, Bytes: size.Size})
		case *tg.PhotoCachedSize:
			out = append(out, domain.PhotoSize{Type: size.Type, Width: size.W, Height: size.H, Bytes: len(size.Bytes)})
		case *tg.PhotoSizeProgressive:
			largest := 0
			for _, b := range size.Sizes {
				if b > largest {
					largest = b
				}
			}
			out = append(out, domain.PhotoSize{Type: size.Type, Width: size.W, Height: size.H, Bytes: largest})
		}
	}
	return out
}

func decodeAttributes(attrs []tg.DocumentAttributeClass) []domain.DocumentAttribute {
	out := make([]domain.DocumentAttribute, 0, len(attrs))
	for _, a := range attrs {
		switch attr := a.(type) {
		case *tg.DocumentAttributeVideo:
			out = append(out, domain.VideoAttribute{
				Duration:     attr.Duration,
				Width:        attr.W,
				Height:       attr.H,
				RoundMessage: attr.RoundMessage,
			})
		case *tg.DocumentAttributeAudio:
			out = append(out, domain.AudioAttribute{
				Duration:  attr.Duration,
				Voice:     attr.Voice,
				Title:     attr.Title,
				Performer: attr.Performer,
			})
		case *tg.DocumentAttributeSticker:
			out = append(out, domain.StickerAttribute{Alt: attr.Alt})
		case *tg.DocumentAttributeAnimated:
			out = append(out, domain.AnimatedAttribute{})
		case *tg.DocumentAttributeFilename:
			out = append(out, domain.FilenameAttribute{FileName: attr.FileName})
		case *tg.DocumentAttributeImageSize:
			out = append(out, domain.ImageSizeAttribute{Width: attr.W, Height: attr.H})
		}
	}
	return out
}

// decodeDialog converts a dialog using the entities and top messages of its page
func decodeDialog(d tg.DialogClass, idx entityIndex, tops map[domain.Peer]*tg.Message) (domain.Dialog, bool) {
	dialog, ok := d.(*tg.Dialog)
	if !ok {
		return domain.Dialog{}, false
	}
	peer := decodePeer(dialog.Peer)
	if peer == nil {
		return domain.Dialog{}, false
	}

	out := domain.Dialog{UnreadCount: dialog.UnreadCount}

	switch peer.Kind {
	case domain.PeerUser:
		u, ok := idx.users[peer.ID]
		if !ok {
			return domain.Dialog{}, false
		}
		out.Entity = userEntity(u)
		out.Verified = u.Verified
		out.Bot = u.Bot
	case domain.PeerChat:
		c, ok := idx.chats[peer.ID]
		if !ok {
			return domain.Dialog{}, false
		}
		out.Entity = chatEntity(c)
		count := c.ParticipantsCount
		out.ParticipantsCount = &count
	case domain.PeerChannel:
		c, ok := idx.channels[peer.ID]
		if !ok {
			return domain.Dialog{}, false
		}
		out.Entity = channelEntity(c)
		out.Verified = c.Verified
		if count, ok := c.GetParticipantsCount(); ok {
			out.ParticipantsCount = &count
		}
	}

	if dialog.TopMessage != 0 {
		top := dialog.TopMessage
		out.LastMessageID = &top
		if msg, ok := tops[*peer]; ok {
			ts := time.Unix(int64(msg.Date), 0).UTC()
			out.LastActivity = &ts
		}
	}

	return out, true
}
