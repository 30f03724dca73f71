package validate

import "strings"

// RegisterForm is the sign-up form for job seekers and employers
type RegisterForm struct {
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,vnphone"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	FirstName       string `json:"firstName" validate:"required,max=50"`
	LastName        string `json:"lastName" validate:"required,max=50"`
	Username        string `json:"username,omitempty" validate:"omitempty,max=50"`
	Role            string `json:"role" validate:"required,oneof=user employer"`
	CompanyName     string `json:"companyName,omitempty" validate:"required_if=Role employer,max=200"`
}

func (f *RegisterForm) Normalize() {
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Phone = strings.ReplaceAll(strings.TrimSpace(f.Phone), " ", "")
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Username = strings.TrimSpace(f.Username)
	f.CompanyName = strings.TrimSpace(f.CompanyName)
}

// LoginForm is the sign-in form
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (f *LoginForm) Normalize() {
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
}

// PostForm is used to create or edit a feed post
type PostForm struct {
	Content  string   `json:"content" validate:"required,min=10,max=500"`
	Category string   `json:"category" validate:"omitempty,oneof=job-search experience discussion question offer"`
	Hashtags []string `json:"hashtags" validate:"max=10,dive,required,max=50"`
	Topics   []string `json:"topics" validate:"max=10,dive,required,max=50"`
	Images   []string `json:"images" validate:"max=10,dive,url"`
}

func (f *PostForm) Normalize() {
	f.Content = strings.TrimSpace(f.Content)
	if f.Category == "" {
		f.Category = "discussion"
	}
	f.Hashtags = normalizeTags(f.Hashtags, true)
	f.Topics = normalizeTags(f.Topics, false)
}

// QuestionForm is used to ask a question in the Q&A section
type QuestionForm struct {
	Title   string   `json:"title" validate:"required,min=10,max=200"`
	Content string   `json:"content" validate:"required,min=20,max=5000"`
	Tags    []string `json:"tags" validate:"min=1,max=10,dive,required,max=50"`
}

func (f *QuestionForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Content = strings.TrimSpace(f.Content)
	f.Tags = normalizeTags(f.Tags, false)
}

// CommentForm is a comment or reply on a post
type CommentForm struct {
	Content  string `json:"content" validate:"required,max=1000"`
	ParentID string `json:"parentId,omitempty"`
}

func (f *CommentForm) Normalize() {
	f.Content = strings.TrimSpace(f.Content)
	f.ParentID = strings.TrimSpace(f.ParentID)
}

// AnswerForm is a comment or reply in a question thread
type AnswerForm struct {
	Content  string `json:"content" validate:"required,max=500"`
	ParentID string `json:"parentId,omitempty"`
}

func (f *AnswerForm) Normalize() {
	f.Content = strings.TrimSpace(f.Content)
	f.ParentID = strings.TrimSpace(f.ParentID)
}

// normalizeTags trims, drops empties and duplicates. Hashtags lose their
// leading '#' and are lower-cased.
func normalizeTags(tags []string, hashtag bool) []string {
	if len(tags) == 0 {
		return tags
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if hashtag {
			t = strings.ToLower(strings.TrimLeft(t, "#"))
		}
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
