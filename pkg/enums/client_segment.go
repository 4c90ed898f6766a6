package enums

// ClientSegment is the marketing tag attached to a client record.
type ClientSegment string

const (
	ClientSegmentNew      ClientSegment = "new"
	ClientSegmentRegular  ClientSegment = "regular"
	ClientSegmentVIP      ClientSegment = "vip"
	ClientSegmentInactive ClientSegment = "inactive"
)

var validClientSegments = []ClientSegment{
	ClientSegmentNew,
	ClientSegmentRegular,
	ClientSegmentVIP,
	ClientSegmentInactive,
}

// String implements fmt.Stringer.
func (c ClientSegment) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ClientSegment.
func (c ClientSegment) IsValid() bool {
	for _, candidate := range validClientSegments {
		if candidate == c {
			return true
		}
	}
	return false
}
