package contracts

// User is the hosted backend's User document as the GraphQL API returns it.
// All internal packages (gateway, sdk, provisioning) use these structs.
type User struct {
	ID    string    `json:"_id" mapstructure:"_id"`
	TS    int64     `json:"_ts" mapstructure:"_ts"`
	Email string    `json:"email" mapstructure:"email"`
	Todos *TodoPage `json:"todos,omitempty" mapstructure:"todos"`
}

// Todo is one todo item owned by a user.
type Todo struct {
	ID        string `json:"_id" mapstructure:"_id"`
	TS        int64  `json:"_ts" mapstructure:"_ts"`
	Title     string `json:"title" mapstructure:"title"`
	Completed bool   `json:"completed" mapstructure:"completed"`
}

// TodoPage is the backend's pagination wrapper for todos.
type TodoPage struct {
	Data   []Todo  `json:"data" mapstructure:"data"`
	After  *string `json:"after,omitempty" mapstructure:"after"`
	Before *string `json:"before,omitempty" mapstructure:"before"`
}

// LoginInput mirrors the LoginInput argument of the login mutation.
type LoginInput struct {
	Email    string `json:"email" mapstructure:"email"`
	Password string `json:"password" mapstructure:"password"`
}

// UserTodoInput is the argument of userCreateTodo; owner is implied by the token.
type UserTodoInput struct {
	Title     string `json:"title" mapstructure:"title"`
	Completed bool   `json:"completed" mapstructure:"completed"`
}

// TodoInput is the argument of updateTodo.
type TodoInput struct {
	Title     string `json:"title" mapstructure:"title"`
	Completed bool   `json:"completed" mapstructure:"completed"`
}
