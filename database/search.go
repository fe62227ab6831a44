package database

import (
	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

const wordFilterSQL = `EXISTS (
	SELECT 1 FROM image_tags it
	JOIN tags t ON it.tag_id = t.id
	WHERE it.image_id = i.id AND t.tag LIKE ?
)`

const wordFilterTypedSQL = `EXISTS (
	SELECT 1 FROM image_tags it
	JOIN tags t ON it.tag_id = t.id
	WHERE it.image_id = i.id AND t.tag LIKE ? AND t.tag_type = ?
)`

// applyWordFilters requires, for every search word, at least one tag
// containing that word. Each word may match a different tag.
func applyWordFilters(qb sq.SelectBuilder, words []string, tagType string) sq.SelectBuilder {
	for _, word := range words {
		pattern := "%" + word + "%"
		if tagType != "" {
			qb = qb.Where(sq.Expr(wordFilterTypedSQL, pattern, tagType))
		} else {
			qb = qb.Where(sq.Expr(wordFilterSQL, pattern))
		}
	}
	return qb
}

// ImageSearchQuery builds the paged tag-value search over images under
// a folder prefix.
func ImageSearchQuery(folder string, words []string, tagType string, limit, offset uint64) (string, []interface{}, error) {
	qb := psql.Select("DISTINCT i.path").
		From("images i").
		Where(sq.Like{"i.path": folder + "%"})
	qb = applyWordFilters(qb, words, tagType)
	return qb.OrderBy("i.path ASC").Limit(limit).Offset(offset).ToSql()
}

// ImageSearchCountQuery builds the matching total count for
// ImageSearchQuery.
func ImageSearchCountQuery(folder string, words []string, tagType string) (string, []interface{}, error) {
	qb := psql.Select("COUNT(DISTINCT i.id)").
		From("images i").
		Where(sq.Like{"i.path": folder + "%"})
	qb = applyWordFilters(qb, words, tagType)
	return qb.ToSql()
}

// TaggedImagesQuery builds the list of image paths under a folder that
// carry at least one tag of the given type.
func TaggedImagesQuery(folder, tagType string) (string, []interface{}, error) {
	return psql.Select("DISTINCT i.path").
		From("images i").
		Join("image_tags it ON i.id = it.image_id").
		Join("tags t ON it.tag_id = t.id").
		Where(sq.Like{"i.path": folder + "%"}).
		Where(sq.Eq{"t.tag_type": tagType}).
		OrderBy("i.path ASC").
		ToSql()
}

// ClearImageTagsQuery builds the deletion of an image's tag
// associations, optionally restricted to one tag type. Tag rows
// themselves are never deleted; they double as suggestions.
func ClearImageTagsQuery(imageID uint, tagType string) (string, []interface{}, error) {
	qb := psql.Delete("image_tags").Where(sq.Eq{"image_id": imageID})
	if tagType != "" {
		qb = qb.Where(sq.Expr("tag_id IN (SELECT id FROM tags WHERE tag_type = ?)", tagType))
	}
	return qb.ToSql()
}

// AddImageTagQuery builds the idempotent insert of one image/tag
// association.
func AddImageTagQuery(imageID, tagID uint) (string, []interface{}, error) {
	return psql.Insert("image_tags").
		Options("OR IGNORE").
		Columns("image_id", "tag_id").
		Values(imageID, tagID).
		ToSql()
}
