package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/d60-Lab/tieba/config"
	"github.com/d60-Lab/tieba/internal/repository"
	"github.com/d60-Lab/tieba/internal/service"
	"github.com/d60-Lab/tieba/pkg/database"
	"github.com/d60-Lab/tieba/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	app := cli.NewApp()
	app.Name = "tiebactl"
	app.Usage = "tieba 运维工具"
	app.Commands = []*cli.Command{
		{
			Name:   "migrate",
			Usage:  "建表（含唯一索引）",
			Action: migrate,
		},
		{
			Name:   "reconcile",
			Usage:  "扫描并修复计数漂移",
			Action: reconcile,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "kind",
					Aliases: []string{"k"},
					Usage:   "计数种类，all 表示全部",
					Value:   "all",
				},
				&cli.IntFlag{
					Name:  "batch",
					Usage: "每批扫描行数",
					Value: 500,
				},
			},
		},
		{
			Name:   "recompute",
			Usage:  "重算单个计数",
			Action: recompute,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Required: true},
				&cli.StringFlag{Name: "owner", Aliases: []string{"o"}, Required: true, Usage: "用户/吧/帖子/评论 ID"},
			},
		},
		{
			Name:   "recompute-unread",
			Usage:  "按未读消息重算会话未读数",
			Action: recomputeUnread,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "session", Aliases: []string{"s"}, Required: true},
				&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "会话中的一方"},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDB() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Log); err != nil {
		return nil, err
	}
	return database.Open(cfg.Database)
}

func newCounterService(db *gorm.DB) service.CounterService {
	return service.NewCounterService(repository.NewCounterRepository(db), repository.NewSessionRepository(db))
}

func migrate(_ *cli.Context) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()
	if err := database.Migrate(db); err != nil {
		return err
	}
	fmt.Println("migrated")
	return nil
}

func reconcile(c *cli.Context) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	counters := newCounterService(db)
	results, err := counters.Reconcile(context.Background(), c.String("kind"), c.Int("batch"))
	for _, r := range results {
		fmt.Printf("%-20s scanned=%d repaired=%d\n", r.Kind, r.Scanned, r.Repaired)
	}
	return err
}

func recompute(c *cli.Context) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	counters := newCounterService(db)
	v, err := counters.Recompute(context.Background(), c.String("kind"), c.String("owner"))
	if err != nil {
		return err
	}
	fmt.Printf("%s %s = %d\n", c.String("kind"), c.String("owner"), v)
	return nil
}

func recomputeUnread(c *cli.Context) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	n, err := newCounterService(db).RecomputeUnread(context.Background(), c.String("session"), c.String("user"))
	if err != nil {
		return err
	}
	fmt.Printf("session %s user %s unread = %d\n", c.String("session"), c.String("user"), n)
	return nil
}
