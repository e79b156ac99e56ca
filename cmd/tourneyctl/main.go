// tourneyctl 赛事与选手的命令行管理工具
//
//	tourneyctl [--config file] <tournament|player> <get ID|create --data JSON|update --data JSON|delete ID>
//
// 成功时以 JSON 输出结果；失败时错误信息与校验违规写入 stderr，
// 4xx 类错误退出码为 1，5xx 类错误退出码为 2。
package main

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"

	"tourneycompanion/app/bootstrap"
	"tourneycompanion/app/player"
	"tourneycompanion/app/tournament"
	"tourneycompanion/config"
	"tourneycompanion/domain"
	"tourneycompanion/domain/crud"
)

const (
	exitOK          = 0
	exitClientError = 1
	exitServerError = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// run 执行命令并返回退出码
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := newCLI(stdout, stderr)
	err := app.RunContext(ctx, args)
	if err == nil {
		return exitOK
	}
	return report(stderr, err)
}

func newCLI(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "tourneyctl",
		Usage:     "manage tournaments and players",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				EnvVars: []string{"TOURNEY_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			resourceCommand(tournament.Resource, "manage tournaments",
				func(a *bootstrap.App) crud.IService[*tournament.DTO] { return a.Tournaments },
				func() *tournament.DTO { return &tournament.DTO{} }),
			resourceCommand(player.Resource, "manage players",
				func(a *bootstrap.App) crud.IService[*player.DTO] { return a.Players },
				func() *player.DTO { return &player.DTO{} }),
		},
		// 错误统一由 run 处理，避免 cli 直接调用 os.Exit
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// setupError 配置或组装失败，按 5xx 处理
type setupError struct{ err error }

func (e *setupError) Error() string { return e.err.Error() }
func (e *setupError) Unwrap() error { return e.err }

func resourceCommand[D domain.IRecord](name, usage string, service func(*bootstrap.App) crud.IService[D], newDTO func() D) *cli.Command {
	dataFlag := &cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "JSON document", Required: true}

	return &cli.Command{
		Name:  name,
		Usage: usage,
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "fetch one " + name + " by id",
				ArgsUsage: "ID",
				Action: func(c *cli.Context) error {
					id, err := parseID(c)
					if err != nil {
						return err
					}
					return withApp(c, func(a *bootstrap.App) error {
						dto, err := service(a).GetByID(c.Context, id)
						if err != nil {
							return err
						}
						return printJSON(c.App.Writer, dto)
					})
				},
			},
			{
				Name:  "create",
				Usage: "create a " + name,
				Flags: []cli.Flag{dataFlag},
				Action: func(c *cli.Context) error {
					dto, err := decodeDTO(c, newDTO)
					if err != nil {
						return err
					}
					return withApp(c, func(a *bootstrap.App) error {
						out, err := service(a).Create(c.Context, dto)
						if err != nil {
							return err
						}
						return printJSON(c.App.Writer, out)
					})
				},
			},
			{
				Name:  "update",
				Usage: "update a " + name + " (the document must carry its id)",
				Flags: []cli.Flag{dataFlag},
				Action: func(c *cli.Context) error {
					dto, err := decodeDTO(c, newDTO)
					if err != nil {
						return err
					}
					return withApp(c, func(a *bootstrap.App) error {
						out, err := service(a).Update(c.Context, dto)
						if err != nil {
							return err
						}
						return printJSON(c.App.Writer, out)
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a " + name + " by id",
				ArgsUsage: "ID",
				Action: func(c *cli.Context) error {
					id, err := parseID(c)
					if err != nil {
						return err
					}
					return withApp(c, func(a *bootstrap.App) error {
						if err := service(a).Delete(c.Context, id); err != nil {
							return err
						}
						return printJSON(c.App.Writer, map[string]any{"id": *id, "deleted": true})
					})
				},
			},
		},
	}
}

// withApp 按 --config 组装应用，执行 fn 后释放资源
func withApp(c *cli.Context, fn func(*bootstrap.App) error) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return &setupError{err: err}
	}
	app, err := bootstrap.New(c.Context, cfg)
	if err != nil {
		return &setupError{err: err}
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

func parseID(c *cli.Context) (*int64, error) {
	if c.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one ID argument")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ID %q", c.Args().First())
	}
	return &id, nil
}

func decodeDTO[D domain.IRecord](c *cli.Context, newDTO func() D) (D, error) {
	dto := newDTO()
	if err := json.Unmarshal([]byte(c.String("data")), dto); err != nil {
		var zero D
		return zero, fmt.Errorf("invalid --data: %v", err)
	}
	return dto, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// report 输出错误并换算退出码：服务错误按状态码，组装失败为 2，其余（参数错误）为 1
func report(w io.Writer, err error) int {
	fmt.Fprintln(w, err.Error())
	for _, v := range crud.ViolationsOf(err) {
		fmt.Fprintf(w, "  - %s\n", v)
	}

	if _, ok := crud.AsServiceError(err); ok {
		if crud.StatusOf(err) >= 500 {
			return exitServerError
		}
		return exitClientError
	}
	var setup *setupError
	if stdErrors.As(err, &setup) {
		return exitServerError
	}
	return exitClientError
}
