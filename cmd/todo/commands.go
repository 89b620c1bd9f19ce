package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/Tanmoy095/authgate/pkg/todos"
	"github.com/Tanmoy095/authgate/shared/contracts"
)

func login(c *cli.Context) error {
	return withClient(c, func(client *todos.Client) error {
		ok, err := client.Login(c.Context, c.String(flagEmail), c.String(flagPassword))
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("login failed; if you are logged in as someone else, log out first")
		}
		fmt.Println(color.GreenString("Login was successful."))
		return nil
	})
}

func logout(c *cli.Context) error {
	return withClient(c, func(client *todos.Client) error {
		if _, err := client.Logout(c.Context); err != nil {
			return err
		}
		fmt.Println("Logout was successful.")
		return nil
	})
}

func status(c *cli.Context) error {
	return withClient(c, func(client *todos.Client) error {
		ok, err := client.LoggedIn(c.Context)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println(color.YellowString("Not logged in."))
			return nil
		}
		me, err := client.Me(c.Context)
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s.\n", color.GreenString(me.Email))
		return nil
	})
}

func list(c *cli.Context) error {
	return withClient(c, func(client *todos.Client) error {
		me, err := client.Me(c.Context)
		if err != nil {
			return err
		}
		if me.Todos == nil || len(me.Todos.Data) == 0 {
			fmt.Println("No todos found.")
			return nil
		}
		fmt.Println(todoTable(me.Todos.Data))
		return nil
	})
}

func add(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return errors.New("add requires a TITLE argument")
	}
	title := strings.Join(c.Args().Slice(), " ")
	return withClient(c, func(client *todos.Client) error {
		todo, err := client.CreateTodo(c.Context, title)
		if err != nil {
			return err
		}
		fmt.Printf("Todo %q created with id %s.\n", todo.Title, todo.ID)
		return nil
	})
}

func setCompleted(completed bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			return errors.New("requires one TODO_ID argument")
		}
		id := c.Args().First()
		return withClient(c, func(client *todos.Client) error {
			me, err := client.Me(c.Context)
			if err != nil {
				return err
			}
			current, ok := findTodo(me, id)
			if !ok {
				return errors.Errorf("todo %s not found", id)
			}
			todo, err := client.UpdateTodo(c.Context, id, contracts.TodoInput{Title: current.Title, Completed: completed})
			if err != nil {
				return err
			}
			fmt.Println(todoTable([]contracts.Todo{*todo}))
			return nil
		})
	}
}

func remove(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("rm requires one TODO_ID argument")
	}
	return withClient(c, func(client *todos.Client) error {
		id, err := client.DeleteTodo(c.Context, c.Args().First())
		if err != nil {
			return err
		}
		fmt.Printf("Todo %s deleted.\n", id)
		return nil
	})
}

func findTodo(me *contracts.User, id string) (contracts.Todo, bool) {
	if me.Todos == nil {
		return contracts.Todo{}, false
	}
	for _, todo := range me.Todos.Data {
		if todo.ID == id {
			return todo, true
		}
	}
	return contracts.Todo{}, false
}

func todoTable(items []contracts.Todo) *uitable.Table {
	table := uitable.New()
	table.AddRow("ID", "DONE", "TITLE")
	for _, todo := range items {
		done := " "
		if todo.Completed {
			done = "x"
		}
		table.AddRow(todo.ID, done, todo.Title)
	}
	return table
}
