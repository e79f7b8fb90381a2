package postservice

import (
	"github.com/google/uuid"

	"github.com/Markelych32/blog-platform/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 3, 200), "title", "must be between 3 and 200 characters long")
}

func validateContent(v *common.Validator, content string) {
	v.Check(content != "", "content", "must be provided")
}

func validateStatus(v *common.Validator, status Status) {
	v.Check(status == StatusDraft || status == StatusPublished, "status", "must be either DRAFT or PUBLISHED")
}

func validateTagIDs(v *common.Validator, ids []uuid.UUID) {
	v.Check(len(ids) <= MaxTagsPerPost, "tag_ids", "must not contain more than 10 tags")
}
