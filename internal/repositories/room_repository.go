package repositories

import (
	"context"
	"time"

	"bpoc/internal/models"

	"gorm.io/gorm"
)

type RoomRepository struct {
	DB *gorm.DB
}

func (r *RoomRepository) Create(ctx context.Context, room *models.VideoCallRoom) error {
	return r.DB.WithContext(ctx).Create(room).Error
}

func (r *RoomRepository) GetByID(ctx context.Context, id string) (*models.VideoCallRoom, error) {
	var room models.VideoCallRoom
	if err := r.DB.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrRoomNotFound)
	}
	return &room, nil
}

// Update applies column updates and returns the refreshed row.
func (r *RoomRepository) Update(ctx context.Context, id string, updates map[string]any) (*models.VideoCallRoom, error) {
	if len(updates) > 0 {
		updates["updated_at"] = time.Now().UTC()
		res := r.DB.WithContext(ctx).Model(&models.VideoCallRoom{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrRoomNotFound
		}
	}
	return r.GetByID(ctx, id)
}

func (r *RoomRepository) CountParticipants(ctx context.Context, roomID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.VideoCallParticipant{}).Where("room_id = ?", roomID).Count(&count).Error
	return count, err
}

func (r *RoomRepository) ListParticipants(ctx context.Context, roomID string) ([]models.VideoCallParticipant, error) {
	var participants []models.VideoCallParticipant
	err := r.DB.WithContext(ctx).Where("room_id = ?", roomID).Order("role DESC").Find(&participants).Error
	return participants, err
}

// CreateParticipants inserts rows. With minimal set, optional columns that
// older schemas may lack are left out of the insert.
func (r *RoomRepository) CreateParticipants(ctx context.Context, participants []models.VideoCallParticipant, minimal bool) error {
	q := r.DB.WithContext(ctx)
	if minimal {
		q = q.Omit("duration_seconds", "status")
	}
	return q.Create(&participants).Error
}

func (r *RoomRepository) CreateInvitation(ctx context.Context, invitation *models.VideoCallInvitation) error {
	return r.DB.WithContext(ctx).Create(invitation).Error
}

func (r *RoomRepository) ListInvitations(ctx context.Context, roomID string) ([]models.VideoCallInvitation, error) {
	var invitations []models.VideoCallInvitation
	err := r.DB.WithContext(ctx).Where("room_id = ?", roomID).Find(&invitations).Error
	return invitations, err
}

// CancelPendingInvitations returns the number of invitations cancelled.
func (r *RoomRepository) CancelPendingInvitations(ctx context.Context, roomID string) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.VideoCallInvitation{}).
		Where("room_id = ? AND status = ?", roomID, models.InvitationPending).
		Updates(map[string]any{"status": models.InvitationCancelled, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

// ListMissed returns waiting rooms idle since before cutoff that never
// recorded a participant.
func (r *RoomRepository) ListMissed(ctx context.Context, cutoff time.Time) ([]models.VideoCallRoom, error) {
	var rooms []models.VideoCallRoom
	err := r.DB.WithContext(ctx).
		Where("status = ?", models.RoomWaiting).
		Where("COALESCE(started_at, created_at) < ?", cutoff).
		Where("NOT EXISTS (SELECT 1 FROM video_call_participants p WHERE p.room_id = video_call_rooms.id)").
		Find(&rooms).Error
	return rooms, err
}

// MarkFailed flips a still-waiting room to failed.
func (r *RoomRepository) MarkFailed(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.VideoCallRoom{}).
		Where("id = ? AND status = ?", id, models.RoomWaiting).
		Updates(map[string]any{"status": models.RoomFailed, "ended_at": at, "updated_at": at})
	return res.RowsAffected == 1, res.Error
}
