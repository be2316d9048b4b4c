package types

// Classification is the safety gate's verdict over one piece of untrusted
// content. OffTopic is only populated for manual job-input checks; the other
// categories carry a malicious verdict alone.
type Classification struct {
	Reason    string `json:"reason"`
	Malicious bool   `json:"malicious"`
	OffTopic  *bool  `json:"off_topic,omitempty"`
}

// IsOffTopic reports whether the off-topic flag is present and set.
func (c *Classification) IsOffTopic() bool {
	return c.OffTopic != nil && *c.OffTopic
}
