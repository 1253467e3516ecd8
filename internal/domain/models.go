package domain

import "time"

// PeerKind identifies the kind of a remote conversation
type PeerKind string

const (
	PeerUser    PeerKind = "user"
	PeerChat    PeerKind = "chat"
	PeerChannel PeerKind = "channel"
)

// Peer is a bare reference to a conversation. ID is always the positive Telegram id.
type Peer struct {
	Kind PeerKind
	ID   int64
}

// Entity is a resolved conversation that can be used for history and forward requests
type Entity struct {
	Peer
	AccessHash int64
	Title      string
	Username   string
	// Synthetic marks entities built from a bare numeric id without server resolution.
	// Their access hash is zero and most requests against them will be rejected.
	Synthetic bool
}

// Sender is the author object attached to a message
type Sender struct {
	ID      int64
	Channel bool
	Bot     bool
}

// ForwardHeader describes where a forwarded message came from
type ForwardHeader struct {
	From        *Peer
	ChannelPost int
}

// Message is a transport-neutral view of a remote message
type Message struct {
	ID               int
	Dialog           Peer
	Date             time.Time
	Text             string
	Views            *int
	ReplyToMessageID *int
	// Sender is set when the author object was delivered with the message
	Sender *Sender
	// From is the raw from-peer of the message
	From    *Peer
	Forward *ForwardHeader
	Media   Media
}

// Media is a closed set of attachments a message can carry
type Media interface {
	isMedia()
}

// PhotoSize is one stored variant of a photo
type PhotoSize struct {
	Type   string
	Width  int
	Height int
	Bytes  int
}

// PhotoMedia is a photo attachment
type PhotoMedia struct {
	ID            int64
	FileReference []byte
	Sizes         []PhotoSize
}

// DocumentMedia is a file attachment; its attributes decide the media type
type DocumentMedia struct {
	ID            int64
	MimeType      string
	Size          int64
	FileReference []byte
	Attributes    []DocumentAttribute
}

// WebPageMedia is a link preview
type WebPageMedia struct {
	URL string
}

// PollMedia is a poll
type PollMedia struct {
	Question string
}

// UnsupportedMedia is any attachment the service does not model
type UnsupportedMedia struct {
	Kind string
}

func (PhotoMedia) isMedia()       {}
func (DocumentMedia) isMedia()    {}
func (WebPageMedia) isMedia()     {}
func (PollMedia) isMedia()        {}
func (UnsupportedMedia) isMedia() {}

// DocumentAttribute is a closed set of document attribute tags
type DocumentAttribute interface {
	isDocumentAttribute()
}

// VideoAttribute marks a video document
type VideoAttribute struct {
	Duration float64
	Width    int
	Height   int
	// RoundMessage is set for video notes
	RoundMessage bool
}

// AudioAttribute marks an audio document
type AudioAttribute struct {
	Duration  int
	Voice     bool
	Title     string
	Performer string
}

// StickerAttribute marks a sticker document
type StickerAttribute struct {
	Alt string
}

// AnimatedAttribute marks an animation (gif)
type AnimatedAttribute struct{}

// FilenameAttribute carries the original file name
type FilenameAttribute struct {
	FileName string
}

// ImageSizeAttribute carries image dimensions
type ImageSizeAttribute struct {
	Width  int
	Height int
}

func (VideoAttribute) isDocumentAttribute()     {}
func (AudioAttribute) isDocumentAttribute()     {}
func (StickerAttribute) isDocumentAttribute()   {}
func (AnimatedAttribute) isDocumentAttribute()  {}
func (FilenameAttribute) isDocumentAttribute()  {}
func (ImageSizeAttribute) isDocumentAttribute() {}

// Account describes the authorized user of the live transport
type Account struct {
	ID       int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Dialog is a conversation listed in the account's dialog list
type Dialog struct {
	Entity
	Verified          bool
	Bot               bool
	ParticipantsCount *int
	LastMessageID     *int
	LastActivity      *time.Time
	UnreadCount       int
}

// ProxyConfig is the proxy the transport dials through
type ProxyConfig struct {
	Type string `json:"type"`
	Host string `json:"host"`
	Port int    `json:"port"`
}
