// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"strings"

	"conduit/internal/models"
	"conduit/internal/slug"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// Factory builds domain entities with fake content. It does not persist them.
type Factory struct {
	faker        *gofakeit.Faker
	slugs        *slug.Generator
	passwordHash string
	seq          int
}

// NewFactory creates a Factory. The same seed yields the same content;
// every user gets password hashed at the given bcrypt cost.
func NewFactory(seed int64, password string, cost int) (*Factory, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	faker := gofakeit.New(seed)
	return &Factory{
		faker:        faker,
		slugs:        slug.NewGenerator(slug.SourceFunc(faker.Rand.Int63n)),
		passwordHash: string(hashed),
	}, nil
}

// User builds a user with a unique username and email.
func (f *Factory) User(overrides ...func(*models.User)) *models.User {
	f.seq++
	name := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, f.faker.Username())
	if len(name) > 24 {
		name = name[:24]
	}
	if name == "" {
		name = "user"
	}
	user := &models.User{
		Username: fmt.Sprintf("%s%d", name, f.seq),
		Email:    fmt.Sprintf("user%d.%s", f.seq, f.faker.Email()),
		Password: f.passwordHash,
		Bio:      f.faker.Sentence(10),
		Image:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// Article builds an article by author tagged with up to three of tags.
func (f *Factory) Article(author *models.User, tags []string, overrides ...func(*models.Article)) *models.Article {
	title := f.faker.HipsterSentence(f.faker.Number(3, 8))
	article := &models.Article{
		Slug:        f.slugs.Make(title),
		Title:       title,
		Description: f.faker.Sentence(12),
		Body:        f.faker.Paragraph(3, 4, 12, "\n\n"),
		TagList:     f.pickTags(tags, 3),
		AuthorID:    author.ID,
	}
	for _, override := range overrides {
		override(article)
	}
	return article
}

// Pick returns up to n distinct indexes in [0, size), skipping skip.
func (f *Factory) Pick(size, n, skip int) []int {
	if n <= 0 || size <= 0 {
		return nil
	}
	perm := f.faker.Rand.Perm(size)
	out := make([]int, 0, n)
	for _, i := range perm {
		if i == skip {
			continue
		}
		out = append(out, i)
		if len(out) == n {
			break
		}
	}
	return out
}

func (f *Factory) pickTags(tags []string, max int) []string {
	if len(tags) == 0 {
		return []string{}
	}
	picked := make([]string, 0, max)
	for _, i := range f.Pick(len(tags), f.faker.Number(1, max), -1) {
		picked = append(picked, tags[i])
	}
	return picked
}
