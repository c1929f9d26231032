package service

import (
	"context"
	"time"

	"anecdote/internal/models"
	"anecdote/internal/repository"
	"anecdote/internal/validation"
)

// PostService gates every mutating or single-post-read operation on the
// post's existence and the caller's relationship to it. Ownership is the only
// grantable relationship, and writes are additionally bounded by a fixed
// modification window measured from the post's creation time.
type PostService struct {
	postRepo   repository.PostRepository
	editWindow time.Duration
	now        func() time.Time
}

type CreatePostInput struct {
	UserID  uint
	Title   string
	Content string
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Title   string
	Content string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

// NewPostService returns a PostService with the given modification window.
func NewPostService(postRepo repository.PostRepository, editWindow time.Duration) *PostService {
	return &PostService{
		postRepo:   postRepo,
		editWindow: editWindow,
		now:        time.Now,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Title == "" || in.Content == "" {
		return nil, models.NewValidationError("Title and content are required")
	}
	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post := &models.Post{
		Title:   in.Title,
		Content: in.Content,
		UserID:  in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	// Re-read so the response carries the author like every other post payload.
	return s.postRepo.GetByID(ctx, post.ID)
}

// GetPost fetches a single post for its owner. Callers other than the owner
// are denied regardless of the window state.
func (s *PostService) GetPost(ctx context.Context, id, callerID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != callerID {
		return nil, models.NewNotOwnerError("Access denied. You can only view your own posts.")
	}
	return post, nil
}

// ListUserPosts returns the caller's own posts, newest first.
func (s *PostService) ListUserPosts(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	return s.postRepo.ListByOwner(ctx, userID, limit, offset)
}

// ListAllPosts returns every user's posts, newest first. The listing is
// intentionally not filtered by ownership; any authenticated caller sees all
// rows.
func (s *PostService) ListAllPosts(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.postRepo.ListAll(ctx, limit, offset)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if in.Title == "" || in.Content == "" {
		return nil, models.NewValidationError("Title and content are required")
	}
	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeWrite(post, in.UserID); err != nil {
		return nil, err
	}

	post.Title = in.Title
	post.Content = in.Content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if err := s.authorizeWrite(post, in.UserID); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, in.PostID)
}

// authorizeWrite applies the shared update/delete gate: the caller must own
// the post AND the post must still be inside its modification window. The
// ownership check runs first so a non-owner is always told NotOwner, never
// WindowExpired. The window is measured from CreatedAt with a strict "after
// cutoff" comparison; an earlier edit never extends it, and the transition
// from editable to locked is one-way.
func (s *PostService) authorizeWrite(post *models.Post, callerID uint) error {
	if post.UserID != callerID {
		return models.NewNotOwnerError("Access denied. You can only modify your own posts.")
	}
	if !post.EditableAt(s.now(), s.editWindow) {
		return models.NewWindowExpiredError(s.editWindow)
	}
	return nil
}
