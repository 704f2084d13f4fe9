package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	// pure Go sqlite driver registered as "sqlite"
	_ "modernc.org/sqlite"

	"github.com/skni-kod/kolo-rest-api/config"
	"github.com/skni-kod/kolo-rest-api/models"
)

type Database struct {
	db                 *gorm.DB
	userRepo           *UserRepo
	groupRepo          *GroupRepo
	profileRepo        *ProfileRepo
	profileLinkRepo    *ProfileLinkRepo
	genericLinkRepo    *GenericLinkRepo
	socialAccountRepo  *SocialAccountRepo
	articleRepo        *ArticleRepo
	commentRepo        *CommentRepo
	tagRepo            *TagRepo
	galleryRepo        *GalleryRepo
	fileRepo           *FileRepo
	hardwareRepo       *HardwareRepo
	hardwareRentalRepo *HardwareRentalRepo
	projectRepo        *ProjectRepo
	sectionRepo        *SectionRepo
	sponsorRepo        *SponsorRepo
	footerLinkRepo     *FooterLinkRepo
	preferenceRepo     *PreferenceRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:                 db,
		userRepo:           NewUserRepo(db),
		groupRepo:          NewGroupRepo(db),
		profileRepo:        NewProfileRepo(db),
		profileLinkRepo:    NewProfileLinkRepo(db),
		genericLinkRepo:    NewGenericLinkRepo(db),
		socialAccountRepo:  NewSocialAccountRepo(db),
		articleRepo:        NewArticleRepo(db),
		commentRepo:        NewCommentRepo(db),
		tagRepo:            NewTagRepo(db),
		galleryRepo:        NewGalleryRepo(db),
		fileRepo:           NewFileRepo(db),
		hardwareRepo:       NewHardwareRepo(db),
		hardwareRentalRepo: NewHardwareRentalRepo(db),
		projectRepo:        NewProjectRepo(db),
		sectionRepo:        NewSectionRepo(db),
		sponsorRepo:        NewSponsorRepo(db),
		footerLinkRepo:     NewFooterLinkRepo(db),
		preferenceRepo:     NewPreferenceRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo                     { return d.userRepo }
func (d Database) GroupRepo() *GroupRepo                   { return d.groupRepo }
func (d Database) ProfileRepo() *ProfileRepo               { return d.profileRepo }
func (d Database) ProfileLinkRepo() *ProfileLinkRepo       { return d.profileLinkRepo }
func (d Database) GenericLinkRepo() *GenericLinkRepo       { return d.genericLinkRepo }
func (d Database) SocialAccountRepo() *SocialAccountRepo   { return d.socialAccountRepo }
func (d Database) ArticleRepo() *ArticleRepo               { return d.articleRepo }
func (d Database) CommentRepo() *CommentRepo               { return d.commentRepo }
func (d Database) TagRepo() *TagRepo                       { return d.tagRepo }
func (d Database) GalleryRepo() *GalleryRepo               { return d.galleryRepo }
func (d Database) FileRepo() *FileRepo                     { return d.fileRepo }
func (d Database) HardwareRepo() *HardwareRepo             { return d.hardwareRepo }
func (d Database) HardwareRentalRepo() *HardwareRentalRepo { return d.hardwareRentalRepo }
func (d Database) ProjectRepo() *ProjectRepo               { return d.projectRepo }
func (d Database) SectionRepo() *SectionRepo               { return d.sectionRepo }
func (d Database) SponsorRepo() *SponsorRepo               { return d.sponsorRepo }
func (d Database) FooterLinkRepo() *FooterLinkRepo         { return d.footerLinkRepo }
func (d Database) PreferenceRepo() *PreferenceRepo         { return d.preferenceRepo }

// Ping checks that the primary connection answers.
func (d Database) Ping(ctx context.Context) error {
	var result int
	return d.db.WithContext(ctx).Raw("SELECT 1").Scan(&result).Error
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// Open connects to the database selected by DB_TYPE and registers read replicas.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  cfg.LogPretty,
		},
	)
	gormConfig := &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DBType {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for postgres")
		}
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DatabaseURL,
			PreferSimpleProtocol: true,
		}), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if len(cfg.DatabaseReplicaURLs) > 0 {
			replicas := make([]gorm.Dialector, 0, len(cfg.DatabaseReplicaURLs))
			for _, dsn := range cfg.DatabaseReplicaURLs {
				replicas = append(replicas, postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}))
			}
			resolver := dbresolver.Register(dbresolver.Config{
				Replicas: replicas,
				Policy:   dbresolver.RandomPolicy{},
			})
			if err := db.Use(resolver); err != nil {
				return nil, fmt.Errorf("register read replicas: %w", err)
			}
		}
	case "sqlite":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = "file:kolo.db?_pragma=foreign_keys(1)"
		}
		db, err = OpenSQLite(dsn, gormConfig)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.DBType)
	}

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test database connection: %w", err)
	}
	return db, nil
}

// OpenSQLite opens a sqlite database through the pure Go driver.
func OpenSQLite(dsn string, gormConfig *gorm.Config) (*gorm.DB, error) {
	if gormConfig == nil {
		gormConfig = &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	}
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}
