package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	groupModel "hifzku_backend/internals/features/groups/groups/model"
	studentModel "hifzku_backend/internals/features/students/students/model"
)

// PlaceNewStudent menentukan fauj siswa baru sebelum disimpan.
// Dengan group_id: target harus aktif & satu scope. Tanpa group_id: masuk fauj terkecil
// (seri → urutan order), atau tetap tanpa fauj bila scope belum punya fauj aktif.
// Memanggil LockScope; harus dipanggil di dalam transaksi yang sama dengan insert.
func PlaceNewStudent(ctx context.Context, tx *gorm.DB, st *studentModel.StudentModel) error {
	if err := LockScope(ctx, tx, st.StudentClubID); err != nil {
		return err
	}

	if st.StudentGroupID != nil {
		target, err := loadGroup(ctx, tx, *st.StudentGroupID, true)
		if err != nil {
			return err
		}
		return validateTarget(ctx, tx, st.StudentClubID, st.StudentCategoryID, target)
	}

	groups, err := activeGroups(ctx, tx, st.StudentClubID, st.StudentCategoryID, true)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return nil
	}
	counts, err := studentCounts(ctx, tx, groupIDs(groups))
	if err != nil {
		return err
	}
	smallest := smallestGroup(groups, counts)
	id := smallest.GroupID
	st.StudentGroupID = &id
	log.Printf("[GROUPS] auto-assign student %s → %s (%d siswa)", st.FullName(), smallest.GroupName, counts[id])
	return nil
}

// smallestGroup: groups sudah urut order, jadi seri dimenangkan yang pertama.
func smallestGroup(groups []groupModel.GroupModel, counts map[uuid.UUID]int64) *groupModel.GroupModel {
	best := 0
	for i := 1; i < len(groups); i++ {
		if counts[groups[i].GroupID] < counts[groups[best].GroupID] {
			best = i
		}
	}
	return &groups[best]
}
