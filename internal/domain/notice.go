package domain

type NoticeVariant string

const (
	NoticeInfo        NoticeVariant = "info"
	NoticeDestructive NoticeVariant = "destructive"
)

// Notice is a non-blocking, user-visible message such as a quota warning.
type Notice struct {
	Title       string
	Description string
	Variant     NoticeVariant
}

func (n Notice) IsZero() bool {
	return n.Title == "" && n.Description == ""
}
