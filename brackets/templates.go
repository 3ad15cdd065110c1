package brackets

import "github.com/volleykit/tournament-server/models"

// Hand-authored double-elimination plans for 5 to 10 participants. Byes go to
// the top seeds, first-round pairings are strongest against weakest, and every
// participant has at least two real matches ahead before elimination is
// possible. The tables are validated by Topology.Validate at load time; do not
// bypass ForSize when adding a size.

const (
	a = models.SlotA
	b = models.SlotB
)

func to(matchID int, slot models.MatchSlot) *models.MatchLink {
	return &models.MatchLink{MatchID: matchID, Slot: slot}
}

// 5 participants, byes for seeds 1-3, 8 matches plus decider.
var templateFive = []MatchTemplate{
	{Num: 1, Section: models.SectionWinners, Round: 1, SeedA: 4, SeedB: 5, NextOnWin: to(2, b), NextOnLoss: to(5, a), Label: "Seed 4 vs Seed 5"},
	{Num: 2, Section: models.SectionWinners, Round: 2, SeedA: 1, NextOnWin: to(4, a), NextOnLoss: to(6, a), Label: "Seed 1 vs winner of match 1"},
	{Num: 3, Section: models.SectionWinners, Round: 2, SeedA: 2, SeedB: 3, NextOnWin: to(4, b), NextOnLoss: to(5, b), Label: "Seed 2 vs Seed 3"},
	{Num: 4, Section: models.SectionWinners, Round: 3, NextOnWin: to(8, a), NextOnLoss: to(7, b), Label: "Winners final"},
	{Num: 5, Section: models.SectionLosers, Round: 2, NextOnWin: to(6, b), Label: "Repechage: losers of matches 1 and 3"},
	{Num: 6, Section: models.SectionLosers, Round: 3, NextOnWin: to(7, a), Label: "Repechage: loser of match 2 vs winner of match 5"},
	{Num: 7, Section: models.SectionLosers, Round: 4, NextOnWin: to(8, b), Label: "Repechage final"},
	{Num: 8, Section: models.SectionFinal, Round: 5, Label: "Grand final"},
	{Num: 9, Section: models.SectionDecider, Round: 6, Label: "Decider (if needed)"},
}

// 6 participants, byes for seeds 1-2, 10 matches plus decider.
var templateSix = []MatchTemplate{
	{Num: 1, Section: models.SectionWinners, Round: 1, SeedA: 3, SeedB: 6, NextOnWin: to(4, b), NextOnLoss: to(5, a), Label: "Seed 3 vs Seed 6"},
	{Num: 2, Section: models.SectionWinners, Round: 1, SeedA: 4, SeedB: 5, NextOnWin: to(3, b), NextOnLoss: to(5, b), Label: "Seed 4 vs Seed 5"},
	{Num: 3, Section: models.SectionWinners, Round: 2, SeedA: 1, NextOnWin: to(6, a), NextOnLoss: to(7, a), Label: "Seed 1 vs winner of match 2"},
	{Num: 4, Section: models.SectionWinners, Round: 2, SeedA: 2, NextOnWin: to(6, b), NextOnLoss: to(8, a), Label: "Seed 2 vs winner of match 1"},
	{Num: 5, Section: models.SectionLosers, Round: 1, NextOnWin: to(7, b), Label: "Repechage: losers of matches 1 and 2"},
	{Num: 6, Section: models.SectionWinners, Round: 3, NextOnWin: to(10, a), NextOnLoss: to(9, b), Label: "Winners final"},
	{Num: 7, Section: models.SectionLosers, Round: 2, NextOnWin: to(8, b), Label: "Repechage: loser of match 3 vs winner of match 5"},
	{Num: 8, Section: models.SectionLosers, Round: 3, NextOnWin: to(9, a), Label: "Repechage: loser of match 4 vs winner of match 7"},
	{Num: 9, Section: models.SectionLosers, Round: 4, NextOnWin: to(10, b), Label: "Repechage final"},
	{Num: 10, Section: models.SectionFinal, Round: 5, Label: "Grand final"},
	{Num: 11, Section: models.SectionDecider, Round: 6, Label: "Decider (if needed)"},
}

// 7 participants, bye for seed 1 plus one repechage bye, 13 matches plus
// decider.
var templateSeven = []MatchTemplate{
	{Num: 1, Section: models.SectionWinners, Round: 1, SeedA: 4, SeedB: 5, NextOnWin: to(5, b), NextOnLoss: to(7, a), Label: "Seed 4 vs Seed 5"},
	{Num: 2, Section: models.SectionWinners, Round: 1, SeedA: 3, SeedB: 6, NextOnWin: to(5, a), NextOnLoss: to(7, b), Label: "Seed 3 vs Seed 6"},
	{Num: 3, Section: models.SectionWinners, Round: 1, SeedA: 2, SeedB: 7, NextOnWin: to(4, b), NextOnLoss: to(8, a), Label: "Seed 2 vs Seed 7"},
	{Num: 4, Section: models.SectionWinners, Round: 2, SeedA: 1, NextOnWin: to(6, a), NextOnLoss: to(9, a), Label: "Seed 1 vs winner of match 3"},
	{Num: 5, Section: models.SectionWinners, Round: 2, NextOnWin: to(6, b), NextOnLoss: to(10, b), Label: "Winner of match 2 vs winner of match 1"},
	{Num: 6, Section: models.SectionWinners, Round: 3, NextOnWin: to(13, a), NextOnLoss: to(12, b), Label: "Winners final"},
	{Num: 7, Section: models.SectionLosers, Round: 1, NextOnWin: to(9, b), Label: "Repechage: losers of matches 1 and 2"},
	{Num: 8, Section: models.SectionLosers, Round: 1, IsBye: true, NextOnWin: to(10, a), Label: "Repechage bye: loser of match 3"},
	{Num: 9, Section: models.SectionLosers, Round: 2, NextOnWin: to(11, a), Label: "Repechage: loser of match 4 vs winner of match 7"},
	{Num: 10, Section: models.SectionLosers, Round: 2, NextOnWin: to(11, b), Label: "Repechage: loser of match 5 vs winner of match 8"},
	{Num: 11, Section: models.SectionLosers, Round: 3, NextOnWin: to(12, a), Label: "Repechage: winners of matches 9 and 10"},
	{Num: 12, Section: models.SectionLosers, Round: 4, NextOnWin: to(13, b), Label: "Repechage final"},
	{Num: 13, Section: models.SectionFinal, Round: 5, Label: "Grand final"},
	{Num: 14, Section: models.SectionDecider, Round: 6, Label: "Decider (if needed)"},
}

// 8 participants, no byes, 14 matches plus decider.
var templateEight = []MatchTemplate{
	{Num: 1, Section: models.SectionWinners, Round: 1, SeedA: 1, SeedB: 8, NextOnWin: to(5, a), NextOnLoss: to(9, a), Label: "Seed 1 vs Seed 8"},
	{Num: 2, Section: models.SectionWinners, Round: 1, SeedA: 4, SeedB: 5, NextOnWin: to(5, b), NextOnLoss: to(9, b), Label: "Seed 4 vs Seed 5"},
	{Num: 3, Section: models.SectionWinners, Round: 1, SeedA: 3, SeedB: 6, NextOnWin: to(6, a), NextOnLoss: to(10, a), Label: "Seed 3 vs Seed 6"},
	{Num: 4, Section: models.SectionWinners, Round: 1, SeedA: 2, SeedB: 7, NextOnWin: to(6, b), NextOnLoss: to(10, b), Label: "Seed 2 vs Seed 7"},
	{Num: 5, Section: models.SectionWinners, Round: 2, NextOnWin: to(7, a), NextOnLoss: to(11, a), Label: "Winner of match 1 vs winner of match 2"},
	{Num: 6, Section: models.SectionWinners, Round: 2, NextOnWin: to(7, b), NextOnLoss: to(12, b), Label: "Winner of match 3 vs winner of match 4"},
	{Num: 7, Section: models.SectionWinners, Round: 3, NextOnWin: to(14, a), NextOnLoss: to(13, b), Label: "Winners final"},
	{Num: 8, Section: models.SectionLosers, Round: 1, NextOnWin: to(11, b), Label: "Repechage: winners of matches 9 and 10"},
	{Num: 9, Section: models.SectionLosers, Round: 1, NextOnWin: to(8, a), Label: "Repechage: losers of matches 1 and 2"},
	{Num: 10, Section: models.SectionLosers, Round: 1, NextOnWin: to(8, b), Label: "Repechage: losers of matches 3 and 4"},
	{Num: 11, Section: models.SectionLosers, Round: 2, NextOnWin: to(12, a), Label: "Repechage: loser of match 5 vs winner of match 8"},
	{Num: 12, Section: models.SectionLosers, Round: 3, NextOnWin: to(13, a), Label: "Repechage: winner of match 11 vs loser of match 6"},
	{Num: 13, Section: models.SectionLosers, Round: 4, NextOnWin: to(14, b), Label: "Repechage final"},
	{Num: 14, Section: models.SectionFinal, Round: 5, Label: "Grand final"},
	{Num: 15, Section: models.SectionDecider, Round: 6, Label: "Decider (if needed)"},
}

// 9 participants, byes for seeds 1-7, only seeds 8 and 9 play round one.
var templateNine = []MatchTemplate{
	{Num: 1, Section: models.SectionWinners, Round: 1, SeedA: 8, SeedB: 9, NextOnWin: to(2, b), NextOnLoss: to(11, a), Label: "Seed 8 vs Seed 9"},
	{Num: 2, Section: models.SectionWinners, Round: 2, SeedA: 1, NextOnWin: to(6, a), NextOnLoss: to(11, b), Label: "Seed 1 vs winner of match 1"},
	{Num: 3, Section: models.SectionWinners, Round: 2, SeedA: 4, SeedB: 5, NextOnWin: to(6, b), NextOnLoss: to(12, a), Label: "Seed 4 vs Seed 5"},
	{Num: 4, Section: models.SectionWinners, Round: 2, SeedA: 3, SeedB: 6, NextOnWin: to(7, a), NextOnLoss: to(12, b), Label: "Seed 3 vs Seed 6"},
	{Num: 5, Section: models.SectionWinners, Round: 2, SeedA: 2, SeedB: 7, NextOnWin: to(7, b), NextOnLoss: to(13, a), Label: "Seed 2 vs Seed 7"},
	{Num: 6, Section: models.SectionWinners, Round: 3, NextOnWin: to(8, a), NextOnLoss: to(10, b), Label: "Winner of match 2 vs winner of match 3"},
	{Num: 7, Section: models.SectionWinners, Round: 3, NextOnWin: to(8, b), NextOnLoss: to(14, a), Label: "Winner of match 4 vs winner of match 5"},
	{Num: 8, Section: models.SectionWinners, Round: 4, NextOnWin: to(16, a), NextOnLoss: to(15, b), Label: "Winners final"},
	{Num: 9, Section: models.SectionLosers, Round: 1, NextOnWin: to(13, b), Label: "Repechage: winners of matches 11 and 12"},
	{Num: 10, Section: models.SectionLosers, Round: 2, NextOnWin: to(14, b), Label: "Repechage: winner of match 13 vs loser of match 6"},
	{Num: 11, Section: models.SectionLosers, Round: 1, NextOnWin: to(9, a), Label: "Repechage: losers of matches 1 and 2"},
	{Num: 12, Section: models.SectionLosers, Round: 1, NextOnWin: to(9, b), Label: "Repechage: losers of matches 3 and 4"},
	{Num: 13, Section: models.SectionLosers, Round: 2, NextOnWin: to(10, a), Label: "Repechage: loser of match 5 vs winner of match 9"},
	{Num: 14, Section: models.SectionLosers, Round: 3, NextOnWin: to(15, a), Label: "Repechage: loser of match 7 vs winner of match 10"},
	{Num: 15, Section: models.SectionLosers, Round: 4, NextOnWin: to(16, b), Label: "Repechage final"},
	{Num: 16, Section: models.SectionFinal, Round: 5, Label: "Grand final"},
	{Num: 17, Section: models.SectionDecider, Round: 6, Label: "Decider (if needed)"},
}

// 10 participants, byes for seeds 1-6, seeds 7-10 play round one.
var templateTen = []MatchTemplate{
	{Num: 1, Section: models.SectionWinners, Round: 1, SeedA: 7, SeedB: 10, NextOnWin: to(3, b), NextOnLoss: to(13, a), Label: "Seed 7 vs Seed 10"},
	{Num: 2, Section: models.SectionWinners, Round: 1, SeedA: 8, SeedB: 9, NextOnWin: to(4, b), NextOnLoss: to(13, b), Label: "Seed 8 vs Seed 9"},
	{Num: 3, Section: models.SectionWinners, Round: 2, SeedA: 2, NextOnWin: to(7, a), NextOnLoss: to(14, a), Label: "Seed 2 vs winner of match 1"},
	{Num: 4, Section: models.SectionWinners, Round: 2, SeedA: 3, NextOnWin: to(7, b), NextOnLoss: to(14, b), Label: "Seed 3 vs winner of match 2"},
	{Num: 5, Section: models.SectionWinners, Round: 2, SeedA: 1, SeedB: 6, NextOnWin: to(8, a), NextOnLoss: to(15, a), Label: "Seed 1 vs Seed 6"},
	{Num: 6, Section: models.SectionWinners, Round: 2, SeedA: 4, SeedB: 5, NextOnWin: to(8, b), NextOnLoss: to(15, b), Label: "Seed 4 vs Seed 5"},
	{Num: 7, Section: models.SectionWinners, Round: 3, NextOnWin: to(9, a), NextOnLoss: to(16, a), Label: "Winner of match 3 vs winner of match 4"},
	{Num: 8, Section: models.SectionWinners, Round: 3, NextOnWin: to(9, b), NextOnLoss: to(16, b), Label: "Winner of match 5 vs winner of match 6"},
	{Num: 9, Section: models.SectionWinners, Round: 4, NextOnWin: to(18, a), NextOnLoss: to(17, b), Label: "Winners final"},
	{Num: 10, Section: models.SectionLosers, Round: 1, NextOnWin: to(11, a), Label: "Repechage: winners of matches 13 and 14"},
	{Num: 11, Section: models.SectionLosers, Round: 2, NextOnWin: to(12, a), Label: "Repechage: winner of match 10 vs winner of match 15"},
	{Num: 12, Section: models.SectionLosers, Round: 3, NextOnWin: to(17, a), Label: "Repechage: winner of match 11 vs winner of match 16"},
	{Num: 13, Section: models.SectionLosers, Round: 1, NextOnWin: to(10, a), Label: "Repechage: losers of matches 1 and 2"},
	{Num: 14, Section: models.SectionLosers, Round: 1, NextOnWin: to(10, b), Label: "Repechage: losers of matches 3 and 4"},
	{Num: 15, Section: models.SectionLosers, Round: 2, NextOnWin: to(11, b), Label: "Repechage: losers of matches 5 and 6"},
	{Num: 16, Section: models.SectionLosers, Round: 3, NextOnWin: to(12, b), Label: "Repechage: losers of matches 7 and 8"},
	{Num: 17, Section: models.SectionLosers, Round: 4, NextOnWin: to(18, b), Label: "Repechage final"},
	{Num: 18, Section: models.SectionFinal, Round: 5, Label: "Grand final"},
	{Num: 19, Section: models.SectionDecider, Round: 6, Label: "Decider (if needed)"},
}

var catalogue = map[int][]MatchTemplate{
	5:  templateFive,
	6:  templateSix,
	7:  templateSeven,
	8:  templateEight,
	9:  templateNine,
	10: templateTen,
}
