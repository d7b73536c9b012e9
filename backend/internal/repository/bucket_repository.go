package repository

import (
	"context"
	"errors"

	"weekend-at-joes/backend/internal/domain/bucket"
	"weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/pkg/ident"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BucketRepository 负责 bucket 与参与者关系。
type BucketRepository struct {
	db *gorm.DB
	crud[bucket.Bucket, ident.BucketUUID]
}

var _ Repository[bucket.Bucket, ident.BucketUUID, bucket.Changeset] = (*BucketRepository)(nil)

func NewBucketRepository(db *gorm.DB) *BucketRepository {
	return &BucketRepository{db: db, crud: newCrud[bucket.Bucket, ident.BucketUUID](db, "bucket")}
}

func (r *BucketRepository) Get(ctx context.Context, id ident.BucketUUID) (bucket.Bucket, error) {
	return r.get(ctx, id)
}

func (r *BucketRepository) Create(ctx context.Context, b bucket.Bucket) (bucket.Bucket, error) {
	return r.create(ctx, b)
}

func (r *BucketRepository) Update(ctx context.Context, cs bucket.Changeset) (bucket.Bucket, error) {
	columns := map[string]any{}
	if cs.BucketName != nil {
		columns["bucket_name"] = *cs.BucketName
	}
	if cs.IsPublic != nil {
		columns["is_public"] = *cs.IsPublic
	}
	return r.update(ctx, cs.UUID, columns)
}

func (r *BucketRepository) Delete(ctx context.Context, id ident.BucketUUID) (bucket.Bucket, error) {
	return r.delete(ctx, id)
}

// CreateWithOwner 创建 bucket 并把创建者登记为已批准的所有者。
func (r *BucketRepository) CreateWithOwner(ctx context.Context, b bucket.Bucket, owner ident.UserUUID) (bucket.Bucket, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&b).Error; err != nil {
			return err
		}
		membership := bucket.BucketUser{BucketUUID: b.UUID, UserUUID: owner, IsOwner: true, Approved: true}
		return tx.Omit(clause.Associations).Create(&membership).Error
	})
	return b, translate("create bucket", err)
}

// Public 列出公开 bucket。
func (r *BucketRepository) Public(ctx context.Context) ([]bucket.Bucket, error) {
	buckets := make([]bucket.Bucket, 0)
	err := r.db.WithContext(ctx).Where("is_public = ?", true).Order("bucket_name ASC, uuid ASC").Find(&buckets).Error
	return buckets, translate("list public buckets", err)
}

// ForUser 列出用户已被批准加入的 bucket。
func (r *BucketRepository) ForUser(ctx context.Context, userID ident.UserUUID) ([]bucket.Bucket, error) {
	buckets := make([]bucket.Bucket, 0)
	err := r.db.WithContext(ctx).
		Joins("JOIN bucket_users ON bucket_users.bucket_uuid = buckets.uuid").
		Where("bucket_users.user_uuid = ? AND bucket_users.approved = ?", userID, true).
		Order("buckets.bucket_name ASC, buckets.uuid ASC").
		Find(&buckets).Error
	return buckets, translate("list user buckets", err)
}

// AddUser 写入参与关系；重复加入返回 ErrConstraintViolation。
func (r *BucketRepository) AddUser(ctx context.Context, membership bucket.BucketUser) (bucket.BucketUser, error) {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&membership).Error
	return membership, translate("add bucket user", err)
}

// Membership 查询参与关系，不存在时返回 ErrNotFound。
func (r *BucketRepository) Membership(ctx context.Context, bucketID ident.BucketUUID, userID ident.UserUUID) (bucket.BucketUser, error) {
	var membership bucket.BucketUser
	err := r.db.WithContext(ctx).
		Where("bucket_uuid = ? AND user_uuid = ?", bucketID, userID).
		First(&membership).Error
	return membership, translate("get bucket user", err)
}

// IsOwner 非成员视为 false。
func (r *BucketRepository) IsOwner(ctx context.Context, bucketID ident.BucketUUID, userID ident.UserUUID) (bool, error) {
	membership, err := r.Membership(ctx, bucketID, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return membership.IsOwner, nil
}

// Approve 批准加入请求。
func (r *BucketRepository) Approve(ctx context.Context, bucketID ident.BucketUUID, userID ident.UserUUID) error {
	result := r.db.WithContext(ctx).Model(&bucket.BucketUser{}).
		Where("bucket_uuid = ? AND user_uuid = ?", bucketID, userID).
		Update("approved", true)
	if result.Error != nil {
		return translate("approve bucket user", result.Error)
	}
	if result.RowsAffected == 0 {
		// MySQL 在值未变化时 RowsAffected 为 0，需要再确认一次是否存在。
		_, err := r.Membership(ctx, bucketID, userID)
		return err
	}
	return nil
}

// RemoveUser 删除参与关系。
func (r *BucketRepository) RemoveUser(ctx context.Context, bucketID ident.BucketUUID, userID ident.UserUUID) error {
	result := r.db.WithContext(ctx).
		Where("bucket_uuid = ? AND user_uuid = ?", bucketID, userID).
		Delete(&bucket.BucketUser{})
	if result.Error != nil {
		return translate("remove bucket user", result.Error)
	}
	if result.RowsAffected == 0 {
		return translate("remove bucket user", gorm.ErrRecordNotFound)
	}
	return nil
}

// Users 列出 bucket 中指定审批状态的用户，按用户名排序。
func (r *BucketRepository) Users(ctx context.Context, bucketID ident.BucketUUID, approved bool) ([]user.User, error) {
	users := make([]user.User, 0)
	err := r.db.WithContext(ctx).
		Joins("JOIN bucket_users ON bucket_users.user_uuid = users.uuid").
		Where("bucket_users.bucket_uuid = ? AND bucket_users.approved = ?", bucketID, approved).
		Order("users.user_name ASC").
		Find(&users).Error
	return users, translate("list bucket users", err)
}
