package handlers

import (
	"net/url"

	"github.com/gorilla/schema"
	"github.com/vancomm/pumpkin-sweeper/internal/mines"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

type PositionDTO struct {
	Row int
	Col int
}

type MoveDTO struct {
	Move string `schema:"move,required"`
	Row  int    `schema:"row,required"`
	Col  int    `schema:"col,required"`
}

func ParseMoveDTO(src url.Values) (move GameMove, pos PositionDTO, err error) {
	var dto MoveDTO
	if err = decoder.Decode(&dto, src); err != nil {
		return
	}
	if move, err = ParseGameMove(dto.Move); err != nil {
		return
	}
	return move, PositionDTO{dto.Row, dto.Col}, nil
}

type ClickDTO struct {
	Button   string `schema:"button,required"`
	FlagMode bool   `schema:"flag_mode"`
	Row      int    `schema:"row,required"`
	Col      int    `schema:"col,required"`
}

func ParseClickDTO(src url.Values) (move GameMove, pos PositionDTO, err error) {
	var dto ClickDTO
	if err = decoder.Decode(&dto, src); err != nil {
		return
	}
	button, err := ParseButton(dto.Button)
	if err != nil {
		return
	}
	return Click(button, dto.FlagMode), PositionDTO{dto.Row, dto.Col}, nil
}

type GameDTO struct {
	GameID string         `json:"game_id"`
	Token  string         `json:"token,omitempty"`
	Result *mines.Outcome `json:"result,omitempty"`
	Game   mines.View     `json:"game"`
}

func NewGameDTO(id string, s *mines.Session) *GameDTO {
	return &GameDTO{GameID: id, Game: s.View()}
}

func (dto *GameDTO) WithResult(o mines.Outcome) *GameDTO {
	dto.Result = &o
	return dto
}
