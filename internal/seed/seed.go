package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"conduit/internal/models"
	"conduit/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "Conduit123!"

// Options configures one seeding run.
type Options struct {
	Users            int      `yaml:"users"`
	ArticlesPerUser  int      `yaml:"articles_per_user"`
	FollowsPerUser   int      `yaml:"follows_per_user"`
	FavoritesPerUser int      `yaml:"favorites_per_user"`
	Tags             []string `yaml:"tags"`
	Password         string   `yaml:"password"`
	Seed             int64    `yaml:"seed"`
	BcryptCost       int      `yaml:"-"`
}

func (o Options) withDefaults() Options {
	if o.Password == "" {
		o.Password = DefaultPassword
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	if o.BcryptCost == 0 {
		o.BcryptCost = bcrypt.DefaultCost
	}
	return o
}

const defaultPresetsYAML = `
small:
  users: 5
  articles_per_user: 2
  follows_per_user: 2
  favorites_per_user: 3
  tags: [go, databases, testing]
demo:
  users: 25
  articles_per_user: 4
  follows_per_user: 5
  favorites_per_user: 8
  tags: [go, rust, databases, devops, testing, frontend, career, opinion]
large:
  users: 200
  articles_per_user: 10
  follows_per_user: 20
  favorites_per_user: 30
  tags: [go, rust, python, databases, devops, testing, frontend, backend, career, opinion, security, cloud]
`

// LoadPresets parses named presets from YAML: a mapping of preset name to Options.
func LoadPresets(r io.Reader) (map[string]Options, error) {
	presets := map[string]Options{}
	if err := yaml.NewDecoder(r).Decode(&presets); err != nil {
		if err == io.EOF {
			return presets, nil
		}
		return nil, fmt.Errorf("decode presets: %w", err)
	}
	for name, opts := range presets {
		if opts.Users < 0 || opts.ArticlesPerUser < 0 || opts.FollowsPerUser < 0 || opts.FavoritesPerUser < 0 {
			return nil, fmt.Errorf("preset %q: counts must not be negative", name)
		}
	}
	return presets, nil
}

// DefaultPresets returns the built-in presets.
func DefaultPresets() map[string]Options {
	presets := map[string]Options{}
	if err := yaml.Unmarshal([]byte(defaultPresetsYAML), &presets); err != nil {
		panic(fmt.Sprintf("seed: invalid built-in presets: %v", err))
	}
	return presets
}

// PresetNames returns the names of presets in sorted order.
func PresetNames(presets map[string]Options) []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary counts what a run created.
type Summary struct {
	Users     int
	Articles  int
	Follows   int
	Favorites int
}

// Seeder writes demo data through the repositories so counters and tags stay
// consistent with what the API would have produced.
type Seeder struct {
	db        *gorm.DB
	users     repository.UserRepository
	articles  repository.ArticleRepository
	favorites repository.FavoriteRepository
	follows   repository.FollowRepository
	tags      repository.TagRepository
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:        db,
		users:     repository.NewUserRepository(db),
		articles:  repository.NewArticleRepository(db),
		favorites: repository.NewFavoriteRepository(db),
		follows:   repository.NewFollowRepository(db),
		tags:      repository.NewTagRepository(db),
	}
}

// ClearAll deletes every row, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	slog.InfoContext(ctx, "clearing existing data")
	for _, model := range []any{&models.Favorite{}, &models.Follow{}, &models.Article{}, &models.Tag{}, &models.User{}} {
		if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run creates users, their articles, then random follows and favorites.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	opts = opts.withDefaults()
	factory, err := NewFactory(opts.Seed, opts.Password, opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}

	users := make([]*models.User, 0, opts.Users)
	for range opts.Users {
		user := factory.User()
		if err := s.users.Create(ctx, user); err != nil {
			return summary, fmt.Errorf("create user %s: %w", user.Username, err)
		}
		users = append(users, user)
	}
	summary.Users = len(users)

	if err := s.tags.Upsert(ctx, opts.Tags); err != nil {
		return summary, fmt.Errorf("record tags: %w", err)
	}

	var articles []*models.Article
	for _, user := range users {
		for range opts.ArticlesPerUser {
			article := factory.Article(user, opts.Tags)
			if err := s.articles.Create(ctx, article); err != nil {
				return summary, fmt.Errorf("create article %s: %w", article.Slug, err)
			}
			articles = append(articles, article)
		}
	}
	summary.Articles = len(articles)

	for i, user := range users {
		for _, j := range factory.Pick(len(users), opts.FollowsPerUser, i) {
			changed, err := s.follows.Follow(ctx, user.ID, users[j].ID)
			if err != nil {
				return summary, fmt.Errorf("follow: %w", err)
			}
			if changed {
				summary.Follows++
			}
		}

		for _, j := range factory.Pick(len(articles), opts.FavoritesPerUser, -1) {
			if articles[j].AuthorID == user.ID {
				continue
			}
			changed, err := s.favorites.Add(ctx, user.ID, articles[j].ID)
			if err != nil {
				return summary, fmt.Errorf("favorite: %w", err)
			}
			if changed {
				summary.Favorites++
			}
		}
	}

	slog.InfoContext(ctx, "seeding completed",
		"users", summary.Users, "articles", summary.Articles,
		"follows", summary.Follows, "favorites", summary.Favorites)
	return summary, nil
}
