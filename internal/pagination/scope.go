package pagination

import "gorm.io/gorm"

// Keyset 游标分页的gorm Scope：按(sortCol DESC, idCol DESC)排序并多取一行
// sortCol可以是列名，也可以是子查询表达式；byCount为true时用游标里的C作为排序值，否则用T
func Keyset(sortCol, idCol string, req Request, byCount bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if req.Cursor != nil {
			var v any = req.Cursor.T
			if byCount {
				v = req.Cursor.C
			}
			db = db.Where("("+sortCol+" < ? OR ("+sortCol+" = ? AND "+idCol+" < ?))", v, v, req.Cursor.ID)
		}
		return db.Order(sortCol + " DESC").Order(idCol + " DESC").Limit(req.Limit + 1)
	}
}
