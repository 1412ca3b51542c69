package model

const MaxTaskTextLength = 50

type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type TaskStats struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}
