package view

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/pribylovaa/go-user-directory/internal/cache"
)

const helpText = `Available commands:
  list | refresh     show users (cache first, then API)
  search [term]      filter by name, designation, gender or favorite; empty clears
  create             create a user (values from a failed attempt are offered again)
  edit <id>          edit a user (type "cancel" at any prompt to abort)
  cancel             leave edit mode and clear the form
  delete <id>        delete a user
  help               show this help
  exit | quit        leave the program`

// errCanceled — пользователь прервал ввод формы.
var errCanceled = errors.New("canceled")

// line — результат чтения одной строки ввода.
type line struct {
	text string
	err  error
}

// App — REPL над списком и формой.
//
// Ввод читает отдельная горутина, поэтому любое ожидание строки
// прерывается отменой ctx (Ctrl+C в users-cli).
type App struct {
	List *ListView
	Form *Form

	in       *bufio.Reader
	lines    chan line
	readOnce sync.Once

	out io.Writer
	log *slog.Logger
}

// NewApp собирает REPL: список на кэше c, форма, ввод in, вывод out.
func NewApp(users UsersAPI, c *cache.Cache, in io.Reader, out io.Writer, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		List:  NewListView(users, c, logger),
		Form:  NewForm(users, logger),
		in:    bufio.NewReader(in),
		lines: make(chan line),
		out:   out,
		log:   logger,
	}
	a.Form.OnSaved = a.refresh

	return a
}

// Run читает команды до EOF, exit, quit или отмены ctx.
func (a *App) Run(ctx context.Context) {
	a.refresh(ctx)

	for {
		fmt.Fprint(a.out, "users> ")

		text, err := a.readLine(ctx)
		if err != nil {
			fmt.Fprintln(a.out)
			return
		}

		parts := strings.Fields(text)
		if len(parts) == 0 {
			continue
		}

		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(a.out, helpText)

		case "list", "l", "refresh":
			a.refresh(ctx)

		case "search":
			a.List.SetSearch(strings.Join(args, " "))
			a.render()

		case "create":
			if _, editing := a.Form.Editing(); editing {
				a.Form.Cancel()
			}
			a.fill(ctx)

		case "edit":
			if len(args) != 1 {
				fmt.Fprintln(a.out, "Usage: edit <id>")
				continue
			}

			u, ok := a.List.Find(args[0])
			if !ok {
				fmt.Fprintln(a.out, "User not found")
				continue
			}

			if id, editing := a.Form.Editing(); !editing || id != u.Key() {
				a.Form.Edit(u)
			}
			a.fill(ctx)

		case "cancel":
			a.Form.Cancel()
			fmt.Fprintln(a.out, "Canceled")

		case "delete":
			if len(args) != 1 {
				fmt.Fprintln(a.out, "Usage: delete <id>")
				continue
			}

			confirm := func(prompt string) bool { return a.confirm(ctx, prompt) }
			if a.List.Delete(ctx, args[0], confirm) {
				fmt.Fprintln(a.out, MsgDeleted)
				a.render()
			}

		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return

		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}

// refresh рисует кэш сразу и ещё раз после ответа API.
func (a *App) refresh(ctx context.Context) {
	done := a.List.Refresh(ctx)
	a.render()

	select {
	case <-done:
	case <-ctx.Done():
		return
	}

	a.render()
}

func (a *App) render() {
	if err := a.List.Render(a.out); err != nil {
		a.log.Warn("render_failed", slog.String("err", err.Error()))
	}
}

// fill опрашивает поля формы и отправляет её.
// Пустой ввод оставляет текущее значение поля. После неудачной
// отправки форма сохраняет введённое и режим редактирования.
func (a *App) fill(ctx context.Context) {
	title := "Create User"
	if _, editing := a.Form.Editing(); editing {
		title = "Edit User"
	}
	fmt.Fprintln(a.out, title)

	err := a.prompt(ctx)
	if errors.Is(err, errCanceled) {
		a.Form.Cancel()
		fmt.Fprintln(a.out, "Canceled")
		return
	}

	if err != nil {
		return
	}

	_, err = a.Form.Submit(ctx)

	var ferrs FieldErrors
	switch {
	case errors.As(err, &ferrs):
		for _, field := range []string{"name", "gender", "designation", "favorites"} {
			if msg, ok := ferrs[field]; ok {
				fmt.Fprintln(a.out, msg)
			}
		}
	case err != nil:
		fmt.Fprintln(a.out, "Error saving user")
	}
}

func (a *App) prompt(ctx context.Context) error {
	f := a.Form

	name, err := a.ask(ctx, "Name", f.Name)
	if err != nil {
		return err
	}
	if name != "" {
		f.Name = name
	}

	gender, err := a.ask(ctx, "Gender "+options(GenderOptions()), f.Gender)
	if err != nil {
		return err
	}
	if gender != "" {
		f.Gender = pickOne(GenderOptions(), gender)
	}

	designation, err := a.ask(ctx, "Designation "+options(DesignationOptions), f.Designation)
	if err != nil {
		return err
	}
	if designation != "" {
		f.Designation = pickOne(DesignationOptions, designation)
	}

	favorites, err := a.ask(ctx, "Favorites, comma separated "+options(FavoriteOptions), strings.Join(f.Favorites, ", "))
	if err != nil {
		return err
	}
	if favorites != "" {
		f.Favorites = pickMany(FavoriteOptions, favorites)
	}

	return nil
}

// ask печатает подсказку с текущим значением и читает строку.
func (a *App) ask(ctx context.Context, label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(a.out, "%s [%s]\n> ", label, current)
	} else {
		fmt.Fprintf(a.out, "%s\n> ", label)
	}

	text, err := a.readLine(ctx)
	if err != nil {
		return "", err
	}

	if strings.EqualFold(text, "cancel") {
		return "", errCanceled
	}

	return text, nil
}

func (a *App) confirm(ctx context.Context, prompt string) bool {
	fmt.Fprintf(a.out, "%s [y/N]\n> ", prompt)

	text, err := a.readLine(ctx)
	if err != nil {
		return false
	}

	switch strings.ToLower(text) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// readLine ждёт следующую строку ввода или отмену ctx.
func (a *App) readLine(ctx context.Context) (string, error) {
	a.readOnce.Do(func() { go a.readLoop() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-a.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}

// readLoop читает строки без перевода строки; неполная последняя строка
// перед EOF отдаётся как есть. После ошибки канал закрывается.
func (a *App) readLoop() {
	defer close(a.lines)

	for {
		text, err := a.in.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && len(text) > 0 {
				a.lines <- line{text: strings.TrimSpace(text)}
			}
			a.lines <- line{err: err}
			return
		}

		a.lines <- line{text: strings.TrimSpace(text)}
	}
}

func options(opts []string) string {
	parts := make([]string, 0, len(opts))
	for i, o := range opts {
		parts = append(parts, strconv.Itoa(i+1)+") "+o)
	}

	return "(" + strings.Join(parts, " ") + ")"
}

// pickOne принимает номер варианта (с 1) или его название без учёта регистра.
// Прочий ввод возвращается как есть, его отклонит сервер.
func pickOne(opts []string, in string) string {
	in = strings.TrimSpace(in)

	if n, err := strconv.Atoi(in); err == nil && n >= 1 && n <= len(opts) {
		return opts[n-1]
	}

	for _, o := range opts {
		if strings.EqualFold(o, in) {
			return o
		}
	}

	return in
}

// pickMany разбирает список через запятую; повторы отбрасываются.
func pickMany(opts []string, in string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)

	for _, part := range strings.Split(in, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		v := pickOne(opts, part)
		if _, dup := seen[v]; dup {
			continue
		}

		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}
