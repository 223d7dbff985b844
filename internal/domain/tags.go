package domain

import (
	"fmt"
	"strings"
)

// TagResult describes the outcome of a tag mutation.
type TagResult int

const (
	TagAdded TagResult = iota + 1
	TagDuplicate
	TagRemoved
	// TagCascadeDeleted means the cron tag was removed: the profile and all
	// its entries must be deleted by the owner of the profile collection.
	TagCascadeDeleted
)

// NormalizeTag lowercases and trims tag and rejects characters that would
// break audience lists.
func NormalizeTag(tag string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(tag))
	if t == "" || strings.ContainsAny(t, "(),") || strings.IndexFunc(t, isSpace) >= 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	return t, nil
}

// AddTag adds tag to p. Adding kord requires admin capability.
func AddTag(p *Profile, tag string, caps Capabilities) (TagResult, error) {
	t, err := NormalizeTag(tag)
	if err != nil {
		return 0, err
	}
	if t == TagKord && !caps.IsAdmin {
		return 0, fmt.Errorf("%w: only admins can add the %q tag", ErrUnauthorized, TagKord)
	}
	if p.HasTag(t) {
		return TagDuplicate, nil
	}
	p.Tags = append(p.Tags, t)
	return TagAdded, nil
}

// RemoveTag removes tag from p. Removing kord requires admin capability.
// Removing cron leaves p untouched and returns TagCascadeDeleted.
func RemoveTag(p *Profile, tag string, caps Capabilities) (TagResult, error) {
	t := strings.ToLower(strings.TrimSpace(tag))
	if !p.HasTag(t) {
		return 0, fmt.Errorf("%w: tag %q", ErrNotFound, tag)
	}
	if t == TagCron {
		return TagCascadeDeleted, nil
	}
	if t == TagKord && !caps.IsAdmin {
		return 0, fmt.Errorf("%w: only admins can remove the %q tag", ErrUnauthorized, TagKord)
	}
	kept := p.Tags[:0]
	for _, x := range p.Tags {
		if strings.ToLower(x) != t {
			kept = append(kept, x)
		}
	}
	p.Tags = kept
	return TagRemoved, nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
